package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"wbsdash/internal/config"
	"wbsdash/internal/server"
	"wbsdash/internal/util"
)

func (o *cliOptions) serveCmd() *cobra.Command {
	var (
		port    int
		devMode bool
		dataDir string
		open    bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := o.configPath
			if path == "" {
				path = config.DefaultConfigPath()
			}
			cfg, info, err := config.LoadConfigFrom(path)
			if err != nil {
				log.Printf("加载配置失败，使用默认配置: %v", err)
				cfg = config.DefaultConfig()
				info = config.LoadConfigInfo{}
			}

			// 命令行参数覆盖配置（config.toml 显式配置的端口优先）
			if port > 0 && !info.PortSpecified {
				cfg.Server.Port = port
			}
			if devMode {
				cfg.Server.DevMode = true
			}
			if dataDir != "" {
				cfg.Data.DataDir = dataDir
			}
			if o.mappingPath != "" {
				cfg.Mapping.File = o.mappingPath
			}

			free, err := util.FindAvailablePort(cfg.Server.Port, 20)
			if err != nil {
				return err
			}
			if free != cfg.Server.Port {
				log.Printf("端口 %d 已被占用，改用 %d", cfg.Server.Port, free)
				cfg.Server.Port = free
			}

			srv, err := server.NewServer(cfg)
			if err != nil {
				return err
			}
			defer srv.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "数据目录: %s\n", config.ResolveDataDir(cfg))
			addr := fmt.Sprintf(":%d", cfg.Server.Port)
			url := fmt.Sprintf("http://localhost:%d/api/status", cfg.Server.Port)

			errCh := make(chan error, 1)
			go func() {
				fmt.Fprintf(cmd.OutOrStdout(), "服务启动中，监听端口 %d ...\n", cfg.Server.Port)
				errCh <- srv.Run(addr)
			}()

			if open {
				if err := util.OpenBrowser(url); err != nil {
					fmt.Fprintf(cmd.OutOrStdout(), "无法自动打开浏览器，请手动访问: %s\n", url)
				}
			}

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			select {
			case err := <-errCh:
				return fmt.Errorf("服务启动失败: %w", err)
			case <-quit:
				fmt.Fprintln(cmd.OutOrStdout(), "\n正在关闭服务...")
				return nil
			}
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "服务端口 (config.toml 优先；仅当未显式配置 port 时生效)")
	cmd.Flags().BoolVar(&devMode, "dev", false, "开发模式")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "数据目录 (覆盖配置文件)")
	cmd.Flags().BoolVar(&open, "open", false, "启动后在浏览器中打开状态页")
	return cmd
}
