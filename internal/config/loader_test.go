package config_test

import (
	"context"
	"os"
	"runtime"
	"testing"

	"github.com/podiumlab/podium/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
				convey.So(cfg.CacheTTLSeconds, convey.ShouldEqual, 60)
				convey.So(cfg.BundleWorkers, convey.ShouldEqual, runtime.NumCPU()*2)
				convey.So(cfg.DefaultPageSize, convey.ShouldEqual, 25)
				convey.So(cfg.MaxPageSize, convey.ShouldEqual, 100)
				convey.So(cfg.RedisAddr, convey.ShouldBeEmpty)
				convey.So(cfg.DatabaseURL, convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("PODIUM_ADDR", ":8080")
			_ = os.Setenv("PODIUM_CACHE_TTL_SECONDS", "120")
			_ = os.Setenv("PODIUM_BUNDLE_WORKERS", "16")
			_ = os.Setenv("PODIUM_REDIS_ADDR", "localhost:6379")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.CacheTTLSeconds, convey.ShouldEqual, 120)
				convey.So(cfg.BundleWorkers, convey.ShouldEqual, 16)
				convey.So(cfg.RedisAddr, convey.ShouldEqual, "localhost:6379")
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":7070"
cache_ttl_seconds: 30
default_page_size: 10
max_page_size: 50
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("PODIUM_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file, defaults filling the rest", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.CacheTTLSeconds, convey.ShouldEqual, 30)
				convey.So(cfg.DefaultPageSize, convey.ShouldEqual, 10)
				convey.So(cfg.MaxPageSize, convey.ShouldEqual, 50)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "info") // From defaults
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
addr: ":7070"
cache_ttl_seconds: 30
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("PODIUM_CONFIG", tmpFile)
			_ = os.Setenv("PODIUM_ADDR", ":8080") // This should override the file
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")       // Overridden by env
				convey.So(cfg.CacheTTLSeconds, convey.ShouldEqual, 30) // From file
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			invalidYaml := `invalid: yaml: content: [`
			tmpFile := createTempConfigFile(invalidYaml)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("PODIUM_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("PODIUM_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("PODIUM_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the page size bounds are inverted", func() {
			_ = os.Setenv("PODIUM_DEFAULT_PAGE_SIZE", "200")
			_ = os.Setenv("PODIUM_MAX_PAGE_SIZE", "100")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "default_page_size exceeds max_page_size")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When the cache TTL is zero", func() {
			_ = os.Setenv("PODIUM_CACHE_TTL_SECONDS", "0")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "cache_ttl_seconds must be positive")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func clearConfigEnvVars() {
	vars := []string{
		"PODIUM_CONFIG",
		"PODIUM_LOG_LEVEL",
		"PODIUM_ADDR",
		"PODIUM_CACHE_TTL_SECONDS",
		"PODIUM_REDIS_ADDR",
		"PODIUM_DATABASE_URL",
		"PODIUM_BUNDLE_WORKERS",
		"PODIUM_DEFAULT_PAGE_SIZE",
		"PODIUM_MAX_PAGE_SIZE",
	}
	for _, v := range vars {
		_ = os.Unsetenv(v)
	}
}

func createTempConfigFile(content string) string {
	f, err := os.CreateTemp("", "podium-config-*.yaml")
	if err != nil {
		panic(err)
	}
	if _, err := f.WriteString(content); err != nil {
		panic(err)
	}
	if err := f.Close(); err != nil {
		panic(err)
	}
	return f.Name()
}
