// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package runtimeenv handles the pieces of process lifecycle that sit
// below any one subsystem: dropping root privileges once the listener
// socket is bound, and telling systemd the service has finished
// starting (or is shutting down).
package runtimeenv

import (
	"fmt"
	"os"
	"os/exec"
	"os/user"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
)

// LoadEnv reads file as a .env file and sets each variable it defines
// into the process environment, the same bootstrap step the teacher's
// hand-rolled parser performed; this uses godotenv instead of
// reimplementing the format.
func LoadEnv(file string) error {
	return godotenv.Load(file)
}

// DropPrivileges changes the process's group and then user to the
// named ones, in that order (group first, since looking up a user's
// uid does not require the group change to have already happened). A
// blank name for either skips that change. The listening socket must
// already be bound before calling this — the server may need a
// privileged port, and once privileges are dropped it cannot rebind one.
func DropPrivileges(group, username string) error {
	if group != "" {
		g, err := user.LookupGroup(group)
		if err != nil {
			return err
		}
		gid, _ := strconv.Atoi(g.Gid)
		if err := syscall.Setgid(gid); err != nil {
			return err
		}
	}

	if username != "" {
		u, err := user.Lookup(username)
		if err != nil {
			return err
		}
		uid, _ := strconv.Atoi(u.Uid)
		if err := syscall.Setuid(uid); err != nil {
			return err
		}
	}

	return nil
}

// SystemdNotify tells systemd the service is ready (or shutting down)
// via systemd-notify, a no-op when the process wasn't started by
// systemd (NOTIFY_SOCKET unset). Errors from the helper binary are
// ignored: there's nothing actionable to do about a failed notify.
func SystemdNotify(ready bool, status string) {
	if os.Getenv("NOTIFY_SOCKET") == "" {
		return
	}

	args := []string{fmt.Sprintf("--pid=%d", os.Getpid())}
	if ready {
		args = append(args, "--ready")
	}
	if status != "" {
		args = append(args, fmt.Sprintf("--status=%s", status))
	}

	_ = exec.Command("systemd-notify", args...).Run()
}
