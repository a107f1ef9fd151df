package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/covenant-term-search/internal/catalog"
	"github.com/Adithya-Monish-Kumar-K/covenant-term-search/pkg/config"
	pkgredis "github.com/Adithya-Monish-Kumar-K/covenant-term-search/pkg/redis"
)

var publishCmd = &cobra.Command{
	Use:   "publish <file>",
	Short: "Publish a catalog to Redis",
	Long:  "Validates a catalog file and writes it to the Redis key configured under catalog.redisKey. Workers pick it up on their next refresh.",
	Args:  cobra.ExactArgs(1),
	RunE:  runPublish,
}

var (
	publishConfig string
	publishKey    string
)

func init() {
	publishCmd.Flags().StringVarP(&publishConfig, "config", "c", "configs/development.yaml", "Path to service config file")
	publishCmd.Flags().StringVarP(&publishKey, "key", "k", "", "Redis key (defaults to catalog.redisKey from config)")
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	c, err := catalog.LoadFile(args[0])
	if err != nil {
		return err
	}
	cfg, err := config.Load(publishConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	key := publishKey
	if key == "" {
		key = cfg.Catalog.RedisKey
	}
	if key == "" {
		return fmt.Errorf("no redis key: set catalog.redisKey or pass --key")
	}

	client, err := pkgredis.NewClient(cmd.Context(), cfg.Redis)
	if err != nil {
		return err
	}
	defer client.Close()

	if err := catalog.Publish(cmd.Context(), client, key, c); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "published %s (%d terms) to %s\n", c.Version(), c.Len(), key)
	return nil
}
