// Copyright 2026 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/drivestream/drivestream/cfg"
	"github.com/drivestream/drivestream/common"
	"github.com/drivestream/drivestream/internal/logger"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// runFunc is the body of a subcommand once the environment is built.
type runFunc func(ctx context.Context, env *Environment, cmd *cobra.Command, args []string) error

type app struct {
	v       *viper.Viper
	cfgFile string
	config  cfg.Config
	newEnv  EnvFactory
}

// NewRootCmd returns the drivestream command tree. newEnv builds the
// environment shared by subcommands from the resolved configuration.
func NewRootCmd(newEnv EnvFactory) (*cobra.Command, error) {
	a := &app{v: viper.New(), newEnv: newEnv}

	rootCmd := &cobra.Command{
		Use:   "drivestream",
		Short: "Read remote files as seekable, range-cached byte streams",
		Long: `drivestream reads files stored behind HTTP(S), Cloud Storage, S3 or
Google Drive as seekable byte streams. Only the byte ranges actually read are
fetched, and every fetched byte is cached for the lifetime of the stream.`,
		Version:           common.GetVersionString(),
		SilenceUsage:      true,
		PersistentPreRunE: func(*cobra.Command, []string) error { return a.init() },
	}
	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config-file", "", "The path to the config file where all drivestream related config needs to be specified. Flags take precedence over the file.")
	if err := cfg.BindFlags(a.v, rootCmd.PersistentFlags()); err != nil {
		return nil, fmt.Errorf("error while binding flags: %w", err)
	}

	rootCmd.AddCommand(newProbeCmd(a), newCatCmd(a), newStatCmd(a))
	return rootCmd, nil
}

func (a *app) init() error {
	if err := loadConfig(a.v, a.cfgFile, &a.config); err != nil {
		return err
	}
	if err := logger.InitLogFile(a.config.Logging); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	if s, err := cfg.Stringify(&a.config); err == nil {
		logger.Debugf("drivestream %s config:\n%s", common.GetVersion(), s)
	}
	return nil
}

// run builds the environment, hands it to fn and shuts it down afterwards.
func (a *app) run(fn runFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		env, err := a.newEnv(ctx, &a.config)
		if err != nil {
			return fmt.Errorf("failed to set up transports: %w", err)
		}
		defer func() {
			if env.Shutdown == nil {
				return
			}
			if err := env.Shutdown(context.Background()); err != nil {
				logger.Warnf("shutdown: %v", err)
			}
		}()
		return fn(ctx, env, cmd, args)
	}
}

// loadConfig resolves flags, the optional config file and defaults into c,
// then rationalizes and validates the result.
func loadConfig(v *viper.Viper, cfgFile string, c *cfg.Config) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("error while reading the config file: %w", err)
		}
	}
	err := v.Unmarshal(c, viper.DecodeHook(cfg.DecodeHook()), func(decoderConfig *mapstructure.DecoderConfig) {
		decoderConfig.TagName = "yaml"
	})
	if err != nil {
		return fmt.Errorf("error while unmarshaling the config: %w", err)
	}
	if err = cfg.Rationalize(c); err != nil {
		return fmt.Errorf("error while rationalizing the config: %w", err)
	}
	if err = cfg.ValidateConfig(c); err != nil {
		return fmt.Errorf("error while validating the config: %w", err)
	}
	return nil
}

// Execute runs the command line and exits non-zero on failure.
func Execute() {
	rootCmd, err := NewRootCmd(NewEnvironment)
	if err != nil {
		logger.Fatal("%v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = rootCmd.ExecuteContext(ctx)
	stop()
	logger.Close()
	if err != nil {
		os.Exit(1)
	}
}
