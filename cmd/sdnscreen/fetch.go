package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"sdnscreen/internal/fetch"
	"sdnscreen/internal/metrics"
)

func fetchCmd() *cobra.Command {
	var (
		url        string
		out        string
		upload     bool
		fromBucket bool
	)
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download the SDN advanced XML publication",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if upload && fromBucket {
				return fmt.Errorf("--upload and --from-bucket are mutually exclusive")
			}
			return runFetch(cmd, url, out, upload, fromBucket)
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "Source URL (defaults to source.url)")
	cmd.Flags().StringVar(&out, "out", "", "Destination file (defaults to source.path)")
	cmd.Flags().BoolVar(&upload, "upload", false, "Copy the downloaded file to the blob bucket")
	cmd.Flags().BoolVar(&fromBucket, "from-bucket", false, "Restore the file from the blob bucket instead of the publisher")
	return cmd
}

func runFetch(cmd *cobra.Command, url, out string, upload, fromBucket bool) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cfg)
	m := metrics.New()

	if url == "" {
		url = cfg.Source.URL
	}
	if out == "" {
		out = cfg.Source.Path
	}

	start := time.Now()
	var size int64
	if fromBucket {
		blob, err := openBlob(ctx, cfg)
		if err != nil {
			return err
		}
		logger.Info("restoring source document", "bucket", blob.Bucket(), "key", cfg.Blob.Key, "path", out)
		size, err = blob.Download(ctx, cfg.Blob.Key, out)
		m.StageDone("fetch", time.Since(start), err)
		if err != nil {
			return err
		}
	} else {
		res, err := fetch.New(nil, logger).Download(ctx, url, out)
		m.StageDone("fetch", time.Since(start), err)
		if err != nil {
			return err
		}
		size = res.Bytes
	}
	m.ObserveSource(size)

	if upload {
		blob, err := openBlob(ctx, cfg)
		if err != nil {
			return err
		}
		if err := blob.Upload(ctx, cfg.Blob.Key, out); err != nil {
			return err
		}
		logger.Info("uploaded source document", "bucket", blob.Bucket(), "key", cfg.Blob.Key)
	}

	if err := m.WriteTextfile(cfg.Metrics.Textfile); err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Wrote %s (%d bytes).\n", out, size)
	return nil
}
