package cmd

import (
	"context"
	"fmt"
	"log"
	"sort"

	"MashFM/config"
	"MashFM/storage"

	"github.com/spf13/cobra"
)

var minioCmd = &cobra.Command{
	Use:   "minio",
	Short: "Inspect the MinIO bucket",
	Long:  `Connect to MinIO with the configured credentials and print per-prefix storage usage.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		fmt.Printf("MinIO: %s, bucket %s\n", cfg.MinioEndpoint, cfg.MinioBucket)

		if err := storage.InitMinio(); err != nil {
			log.Fatalf("failed to connect to minio: %v", err)
		}

		usage, err := storage.BucketUsage(context.Background())
		if err != nil {
			log.Fatalf("failed to read bucket usage: %v", err)
		}
		if len(usage) == 0 {
			fmt.Println("bucket is empty")
			return
		}

		prefixes := make([]string, 0, len(usage))
		for p := range usage {
			prefixes = append(prefixes, p)
		}
		sort.Strings(prefixes)
		for _, p := range prefixes {
			fmt.Printf("  %-16s %s\n", p, formatSize(usage[p]))
		}
	},
}

func formatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

func init() {
	rootCmd.AddCommand(minioCmd)
}
