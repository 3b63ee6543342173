package cmd

import (
	"fmt"
	"log"

	"MashFM/cache"
	"MashFM/config"

	"github.com/spf13/cobra"
)

var redisCmd = &cobra.Command{
	Use:   "redis",
	Short: "Test the Redis connection",
	Long:  `Connect to Redis with the configured credentials and run a basic read/write check.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		fmt.Printf("Redis: %s:%s, DB %d\n", cfg.RedisHost, cfg.RedisPort, cfg.RedisDB)

		if err := cache.ConnectRedis(cfg); err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		fmt.Println("connected")

		if err := cache.TestRedis(); err != nil {
			log.Fatalf("redis read/write check failed: %v", err)
		}
		fmt.Println("read/write check passed")

		if err := cache.CloseRedis(); err != nil {
			log.Printf("error closing redis connection: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(redisCmd)
}
