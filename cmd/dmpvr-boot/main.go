// Copyright 2026 The go-vrm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command dmpvr-boot (re)starts the dmpvr services of a programming
// station: a dmpvr-srv control service and the dmpvr-ctl journal
// watcher, wired to the same output directory.
package main // import "github.com/go-vrm/dmpvr/cmd/dmpvr-boot"

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/sbinet/pmon"
	"golang.org/x/sync/errgroup"
)

func main() {
	var (
		dir    = flag.String("dir", logDir(), "directory for service log files")
		odir   = flag.String("o", "/var/run/dmpvr", "output directory shared by dmpvr-srv and dmpvr-ctl")
		addr   = flag.String("addr", ":9999", "[ip]:port dmpvr-srv listens on")
		doMon  = flag.Bool("pmon", false, "enable pmon monitoring")
		doFreq = flag.Duration("freq", 1*time.Second, "pmon frequency")
	)

	flag.Parse()

	log.SetPrefix("dmpvr-boot: ")
	log.SetFlags(0)

	cmds := []*exec.Cmd{
		exec.Command("dmpvr-srv", "-addr", *addr, "-o", *odir),
		exec.Command("dmpvr-ctl", "-dir", *odir),
	}

	stop := make(chan os.Signal, 1)
	err := run(*doMon, *doFreq, cmds, *dir, stop)
	if err != nil {
		log.Fatalf("%+v", err)
	}
}

// logDir is the default directory for the per-service log files.
func logDir() string {
	if dir := os.Getenv("DMPVRLOGDIR"); dir != "" {
		return dir
	}
	return "/var/log/dmpvr"
}

func run(doMon bool, freq time.Duration, cmds []*exec.Cmd, dir string, stop chan os.Signal) error {
	signal.Notify(stop, os.Interrupt)
	defer signal.Stop(stop)

	reap(cmds)

	var (
		grp  errgroup.Group
		kill = make(chan int)
	)
	for i := range cmds {
		cmd := cmds[i]
		grp.Go(func() error {
			return start(cmd, dir, kill, doMon, freq)
		})
	}

	go func() {
		<-stop
		close(kill)
	}()

	err := grp.Wait()
	if err != nil {
		return fmt.Errorf("could not boot dmpvr services: %w", err)
	}
	return nil
}

// reap kills the stale instances of cmds left over from a previous
// boot, if any.
func reap(cmds []*exec.Cmd) {
	for _, cmd := range cmds {
		name := filepath.Base(cmd.Path)
		kill := exec.Command("killall", name)
		kill.Stderr = os.Stderr
		kill.Stdout = os.Stdout
		err := kill.Run()
		if err != nil {
			log.Printf("could not kill %q: %+v", name, err)
		}
	}
}

func start(cmd *exec.Cmd, dir string, kill chan int, doMon bool, freq time.Duration) error {
	name := filepath.Base(cmd.Path)
	out, err := os.Create(filepath.Join(dir, name+".log"))
	if err != nil {
		return fmt.Errorf("could not create output log file for %q: %w", name, err)
	}
	defer out.Close()

	cmd.Stdout = out
	cmd.Stderr = out

	log.Printf("starting %q...", name)
	err = cmd.Start()
	if err != nil {
		return fmt.Errorf("could not start %q: %w", name, err)
	}

	if doMon {
		p, err := pmon.Monitor(cmd.Process.Pid)
		if err != nil {
			return fmt.Errorf("could not start monitoring %q (pid=%d): %w", name, cmd.Process.Pid, err)
		}
		f, err := os.Create(filepath.Join(dir, name+"-pmon.log"))
		if err != nil {
			return fmt.Errorf("could not create pmon log file for command %q: %w", name, err)
		}
		defer f.Close()
		p.W = f
		p.Freq = freq

		go func() {
			log.Printf("run pmon %q...", name)
			err := p.Run()
			if err != nil {
				log.Printf("could not start monitoring %q: %+v", name, err)
			}
		}()

		defer func() {
			err := p.Kill()
			if err != nil {
				log.Printf("could not stop monitoring %q: %+v", name, err)
			}
		}()
	}

	errch := make(chan error)
	go func() {
		errch <- cmd.Wait()
	}()

	select {
	case <-kill:
		err = cmd.Process.Kill()
		if err != nil {
			return fmt.Errorf("could not kill %q: %+v", name, err)
		}
	case err = <-errch:
		if err != nil {
			return fmt.Errorf("could not run %q: %w", name, err)
		}
	}

	return nil
}
