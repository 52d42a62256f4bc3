// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/obsidian-net/classicd/internal/adminapi"
	"github.com/obsidian-net/classicd/internal/backup"
	"github.com/obsidian-net/classicd/internal/config"
	"github.com/obsidian-net/classicd/internal/repository"
	"github.com/obsidian-net/classicd/internal/runtimeenv"
	"github.com/obsidian-net/classicd/internal/server"
	"github.com/obsidian-net/classicd/internal/tasks"
	"github.com/obsidian-net/classicd/pkg/log"
)

func main() {
	var flagConfigFile, flagUser, flagGroup, flagAddress, flagGenAdminToken string
	var flagPort int
	var flagDebug, flagVerbose, flagStopImmediately bool
	flag.StringVar(&flagConfigFile, "config", "./config.json", "Overwrite the default config options by those specified in `config.json`")
	flag.StringVar(&flagUser, "user", "", "Drop privileges to this `user` after binding the listening sockets")
	flag.StringVar(&flagGroup, "group", "", "Drop privileges to this `group` after binding the listening sockets")
	flag.StringVar(&flagAddress, "address", "", "Overwrite the configured listen `address`")
	flag.IntVar(&flagPort, "port", 0, "Overwrite the configured listen `port`")
	flag.BoolVar(&flagDebug, "debug", false, "Log at debug level")
	flag.BoolVar(&flagVerbose, "verbose", false, "Log at note level (between info and debug)")
	flag.StringVar(&flagGenAdminToken, "gen-admin-token", "", "Print a bearer token for the admin API for `admin-name` and exit")
	flag.BoolVar(&flagStopImmediately, "no-server", false, "Do not start a server, stop right after initialization and argument handling")
	flag.Parse()

	switch {
	case flagDebug:
		log.SetLogLevel("debug")
	case flagVerbose:
		log.SetLogLevel("notice")
	default:
		log.SetLogLevel("info")
	}

	if err := runtimeenv.LoadEnv("./.env"); err != nil && !os.IsNotExist(err) {
		log.Fatalf("parsing './.env' file failed: %s", err.Error())
	}

	config.Init(flagConfigFile)

	if flagAddress != "" {
		config.Keys.Address = flagAddress
	}
	if flagPort != 0 {
		config.Keys.Port = flagPort
	}

	// As a special case for secrets, allow "env:NAME" to pull the value
	// from an environment variable instead of the config file. Only the
	// admin token secret is resolved this way.
	config.Keys.AdminTokenSecret = resolveEnvRef(config.Keys.AdminTokenSecret)

	if err := os.MkdirAll(config.Keys.WorldSaveLocation, 0o755); err != nil {
		log.Fatalf("creating world save directory: %s", err.Error())
	}

	repo, err := repository.Connect(config.Keys.DatabasePath)
	if err != nil {
		log.Fatalf("connecting to %s: %s", config.Keys.DatabasePath, err.Error())
	}

	ttl, err := time.ParseDuration(config.Keys.AdminTokenTTL)
	if err != nil {
		log.Fatalf("invalid adminTokenTtl %q: %s", config.Keys.AdminTokenTTL, err.Error())
	}

	if flagGenAdminToken != "" {
		token, err := adminapi.IssueToken([]byte(config.Keys.AdminTokenSecret), flagGenAdminToken, ttl)
		if err != nil {
			log.Fatalf("issuing admin token: %s", err.Error())
		}
		fmt.Printf("admin token for %q: %s\n", flagGenAdminToken, token)
		repo.Close()
		return
	}

	backupUploader, err := backup.New(context.Background(),
		config.Keys.BackupBucket, config.Keys.BackupPrefix, config.Keys.BackupRegion,
		config.Keys.BackupEndpoint, config.Keys.BackupUsePathStyle)
	if err != nil {
		log.Fatalf("configuring world backup: %s", err.Error())
	}

	srv := server.New()
	srv.Logout = repo
	srv.Backup = backupUploader

	worldNames, err := srv.DiscoverWorldNames()
	if err != nil {
		log.Fatalf("discovering worlds: %s", err.Error())
	}
	for _, name := range worldNames {
		if err := srv.LoadOrCreateWorld(name); err != nil {
			log.Fatalf("loading world %q: %s", name, err.Error())
		}
	}

	if flagStopImmediately {
		repo.Close()
		return
	}

	gameAddr := fmt.Sprintf("%s:%d", config.Keys.Address, config.Keys.Port)
	gameListener, err := net.Listen("tcp", gameAddr)
	if err != nil {
		log.Fatalf("starting game listener on %s: %s", gameAddr, err.Error())
	}

	var adminHTTPServer *http.Server
	var adminListener net.Listener
	if config.Keys.AdminAPIAddress != "" {
		adminListener, err = net.Listen("tcp", config.Keys.AdminAPIAddress)
		if err != nil {
			log.Fatalf("starting admin API listener on %s: %s", config.Keys.AdminAPIAddress, err.Error())
		}
		api := adminapi.New(srv, repo, []byte(config.Keys.AdminTokenSecret))
		adminHTTPServer = &http.Server{
			Handler:      api.Router(),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
		}
	}

	// The listening sockets are bound above, before any privilege drop,
	// so the process can still claim a low-numbered game port.
	if err := runtimeenv.DropPrivileges(flagGroup, flagUser); err != nil {
		log.Fatalf("dropping privileges: %s", err.Error())
	}

	scheduler, err := tasks.New(srv)
	if err != nil {
		log.Fatalf("building task scheduler: %s", err.Error())
	}
	if err := scheduler.Start(
		time.Duration(config.Keys.SaveIntervalSeconds)*time.Second,
		config.Keys.Announcements,
		time.Duration(config.Keys.AnnouncementIntervalSeconds)*time.Second,
		time.Duration(config.Keys.NetInfoIntervalSeconds)*time.Second,
	); err != nil {
		log.Fatalf("starting task scheduler: %s", err.Error())
	}

	ctx, cancel := context.WithCancel(context.Background())
	gameListenerWrapper := server.NewListener(gameListener, srv)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Infof("classicd: serving %s on %s", config.Keys.ServerName, gameAddr)
		if err := gameListenerWrapper.Serve(ctx); err != nil {
			log.Errorf("game listener: %s", err.Error())
		}
	}()

	if adminHTTPServer != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Infof("classicd: admin API listening on %s", config.Keys.AdminAPIAddress)
			if err := adminHTTPServer.Serve(adminListener); err != nil && err != http.ErrServerClosed {
				log.Errorf("admin API server: %s", err.Error())
			}
		}()
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

	wg.Add(1)
	go func() {
		defer wg.Done()
		<-sigs
		runtimeenv.SystemdNotify(false, "shutting down")
		log.Info("classicd: shutting down")

		cancel()
		if adminHTTPServer != nil {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			_ = adminHTTPServer.Shutdown(shutdownCtx)
		}
		_ = scheduler.Shutdown()

		if err := srv.SaveAll(); err != nil {
			log.Errorf("classicd: saving worlds on shutdown: %s", err.Error())
		}
		if err := repo.Close(); err != nil {
			log.Errorf("classicd: closing database: %s", err.Error())
		}
	}()

	runtimeenv.SystemdNotify(true, "running")
	wg.Wait()
}

// resolveEnvRef resolves an "env:NAME" config value to the named
// environment variable's contents. A value without the prefix is
// returned unchanged.
func resolveEnvRef(value string) string {
	if !strings.HasPrefix(value, "env:") {
		return value
	}
	return os.Getenv(strings.TrimPrefix(value, "env:"))
}
