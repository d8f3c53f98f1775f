// Copyright 2026 The go-vrm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command dmpvr-daq runs a TDAQ node driving a regulator programming
// station.
package main // import "github.com/go-vrm/dmpvr/cmd/dmpvr-daq"

import (
	"context"
	"log"
	"os"
	"strconv"

	"github.com/go-daq/smbus"
	"github.com/go-daq/tdaq"
	"github.com/go-daq/tdaq/flags"

	"github.com/go-vrm/dmpvr/raa"
)

func main() {
	cmd := flags.New()
	if len(cmd.Args) != 3 {
		log.Fatalf("usage: dmpvr-daq <i2c-bus> <i2c-addr> <config-file>")
	}

	busID, err := strconv.Atoi(cmd.Args[0])
	if err != nil {
		log.Fatalf("invalid I2C bus %q: %+v", cmd.Args[0], err)
	}
	addr, err := strconv.ParseUint(cmd.Args[1], 0, 8)
	if err != nil {
		log.Fatalf("invalid I2C address %q: %+v", cmd.Args[1], err)
	}

	node := &node{
		busID:   busID,
		addr:    uint8(addr),
		cfgname: cmd.Args[2],
	}

	srv := tdaq.New(cmd, os.Stdout)
	srv.CmdHandle("/config", node.OnConfig)
	srv.CmdHandle("/init", node.OnInit)
	srv.CmdHandle("/reset", node.OnReset)
	srv.CmdHandle("/start", node.OnStart)
	srv.CmdHandle("/stop", node.OnStop)
	srv.CmdHandle("/quit", node.OnQuit)

	srv.OutputHandle("/bb", node.bb)

	srv.RunHandle(node.run)

	err = srv.Run(context.Background())
	if err != nil {
		log.Panicf("error: %+v", err)
	}
}

type node struct {
	busID   int
	addr    uint8
	cfgname string

	conn *smbus.Conn
	dev  *raa.Device
	cfg  *raa.Config

	data chan []byte
}

func (node *node) OnConfig(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /config command...")

	raw, err := os.ReadFile(node.cfgname)
	if err != nil {
		return err
	}
	cfg, err := raa.ParseConfig(raw)
	if err != nil {
		return err
	}
	node.cfg = cfg
	ctx.Msg.Infof("loaded %q: %d command(s), %d slot(s)",
		node.cfgname, len(cfg.Cmds), cfg.Slots,
	)
	return nil
}

func (node *node) OnInit(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /init command...")

	conn, err := smbus.Open(node.busID, node.addr)
	if err != nil {
		return err
	}
	node.conn = conn
	node.dev = raa.NewDevice(conn, node.addr)
	node.data = make(chan []byte, 4)
	return nil
}

func (node *node) OnReset(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /reset command...")

	if node.conn != nil {
		_ = node.conn.Close()
	}
	conn, err := smbus.Open(node.busID, node.addr)
	if err != nil {
		return err
	}
	node.conn = conn
	node.dev = raa.NewDevice(conn, node.addr)
	node.data = make(chan []byte, 4)
	return nil
}

func (node *node) OnStart(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /start command...")

	err := node.dev.Program(node.cfg)
	ctx.Msg.Infof("programming outcome: %s", raa.OutcomeOf(err))
	if err != nil {
		// ship the fault log downstream before giving up.
		if buf, berr := node.dev.ReadBlackBox(); berr == nil {
			select {
			case node.data <- buf:
			default:
			}
		}
		return err
	}
	return nil
}

func (node *node) OnStop(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /stop command...")

	buf, err := node.dev.ReadBlackBox()
	if err != nil {
		return err
	}
	select {
	case node.data <- buf:
	default:
	}
	return nil
}

func (node *node) OnQuit(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /quit command...")

	if node.conn != nil {
		return node.conn.Close()
	}
	return nil
}

func (node *node) bb(ctx tdaq.Context, dst *tdaq.Frame) error {
	select {
	case <-ctx.Ctx.Done():
		dst.Body = nil
		return nil
	case data := <-node.data:
		dst.Body = data
	}
	return nil
}

func (node *node) run(ctx tdaq.Context) error {
	<-ctx.Ctx.Done()
	return nil
}
