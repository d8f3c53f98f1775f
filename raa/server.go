// Copyright 2026 The go-vrm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package raa

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// RunRecord is the persisted outcome of one programming run.
type RunRecord struct {
	Time    time.Time `json:"time"`
	Outcome string    `json:"outcome"`
	Slots   int       `json:"slots"`
	Cmds    int       `json:"cmds"`
	Err     string    `json:"err,omitempty"`
}

// Recorder persists programming-run records. *histdb.DB implements
// Recorder.
type Recorder interface {
	Record(rec RunRecord) error
}

// server exposes a Device over a JSON-over-TCP control socket.
type server struct {
	ctl net.Listener

	msg  *log.Logger
	odir string

	dev  *Device
	port *Port
	rec  Recorder
}

// Serve runs a control server for dev on addr. Programming outcomes
// are appended to a runs.json journal under odir and fault-log dumps
// archived beside it. A non-nil rec additionally receives every run
// record.
func Serve(addr, odir string, dev *Device, rec Recorder) error {
	srv, err := newServer(addr, odir, dev, rec)
	if err != nil {
		return fmt.Errorf("could not create dmpvr server: %w", err)
	}
	return srv.serve()
}

func newServer(addr, odir string, dev *Device, rec Recorder) (*server, error) {
	ctl, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("could not create dmpvr-srv server on %q: %w", addr, err)
	}

	srv := &server{
		ctl: ctl,

		msg:  log.New(os.Stdout, "dmpvr-svc: ", 0),
		odir: odir,

		dev:  dev,
		port: NewPort(dev),
		rec:  rec,
	}
	return srv, nil
}

func (srv *server) serve() error {
	defer srv.close()

	for {
		conn, err := srv.ctl.Accept()
		if err != nil {
			return fmt.Errorf("could not accept connection: %w", err)
		}

		err = srv.handle(conn)
		if err != nil {
			srv.msg.Printf("could not serve connection: %+v", err)
			continue
		}
	}
}

func (srv *server) handle(conn net.Conn) error {
	defer conn.Close()
	srv.msg.Printf("serving %v...", conn.RemoteAddr())
	defer srv.msg.Printf("serving %v... [done]", conn.RemoteAddr())

loop:
	for {
		var req struct {
			Name string           `json:"name"`
			Args *json.RawMessage `json:"args"`
		}

		err := json.NewDecoder(conn).Decode(&req)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break loop
			}
			srv.msg.Printf("could not decode command request: %+v", err)
			srv.reply(conn, nil, err)
			continue
		}
		srv.msg.Printf("received request: name=%q", req.Name)

		switch strings.ToLower(req.Name) {
		case "program":
			var blob string
			err = json.Unmarshal(*req.Args, &blob)
			if err != nil {
				srv.msg.Printf("could not decode %q payload: %+v", req.Name, err)
				srv.reply(conn, nil, err)
				continue
			}

			err = srv.program([]byte(blob))
			srv.reply(conn, nil, err)
			if err != nil {
				srv.msg.Printf("could not program device: %+v", err)
				continue
			}

		case "dump":
			buf, err := srv.port.Dump()
			if err != nil {
				srv.msg.Printf("could not dump fault log: %+v", err)
				srv.reply(conn, nil, err)
				continue
			}

			err = srv.archive(buf)
			if err != nil {
				srv.msg.Printf("could not archive fault log: %+v", err)
			}
			srv.reply(conn, string(buf), nil)

		case "id":
			ident, err := srv.dev.Identity()
			if err != nil {
				srv.msg.Printf("could not read device identity: %+v", err)
				srv.reply(conn, nil, err)
				continue
			}
			srv.reply(conn, struct {
				ID  string `json:"id"`
				Rev string `json:"rev"`
			}{
				ID:  fmt.Sprintf("%x", ident.ID),
				Rev: fmt.Sprintf("%02x", ident.Rev),
			}, nil)

		case "slots":
			free, err := srv.dev.FreeSlots()
			if err != nil {
				srv.msg.Printf("could not read free NVM slots: %+v", err)
				srv.reply(conn, nil, err)
				continue
			}
			srv.reply(conn, free, nil)

		case "quit":
			srv.reply(conn, nil, nil)
			break loop

		default:
			srv.msg.Printf("unknown command name=%q, args=%q", req.Name, req.Args)
			err = fmt.Errorf("unknown command %q", req.Name)
			srv.reply(conn, nil, err)
			continue
		}
	}

	return nil
}

// program runs one programming attempt and journals its outcome,
// whatever the result.
func (srv *server) program(blob []byte) error {
	rec := RunRecord{Time: time.Now().UTC()}

	cfg, err := ParseConfig(blob)
	if err == nil {
		rec.Slots = cfg.Slots
		rec.Cmds = len(cfg.Cmds)
		err = srv.dev.Program(cfg)
	}

	rec.Outcome = OutcomeOf(err)
	if err != nil {
		rec.Err = err.Error()
	}

	jerr := srv.journal(rec)
	if jerr != nil {
		srv.msg.Printf("could not journal run record: %+v", jerr)
	}
	if srv.rec != nil {
		rerr := srv.rec.Record(rec)
		if rerr != nil {
			srv.msg.Printf("could not record run: %+v", rerr)
		}
	}

	return err
}

// journal appends rec to the runs.json journal, one JSON document per
// line.
func (srv *server) journal(rec RunRecord) error {
	fname := filepath.Join(srv.odir, "runs.json")
	f, err := os.OpenFile(fname, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("could not open run journal %q: %w", fname, err)
	}
	err = json.NewEncoder(f).Encode(rec)
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("could not encode run record: %w", err)
	}
	return f.Close()
}

// archive stores a fault-log snapshot under the output directory.
func (srv *server) archive(buf []byte) error {
	fname := filepath.Join(srv.odir, fmt.Sprintf(
		"blackbox-%s.txt", time.Now().UTC().Format("20060102-150405"),
	))
	err := os.WriteFile(fname, buf, 0644)
	if err != nil {
		return fmt.Errorf("could not write fault-log archive %q: %w", fname, err)
	}
	return nil
}

func (srv *server) reply(conn net.Conn, data interface{}, err error) {
	rep := struct {
		Msg  string      `json:"msg"`
		Data interface{} `json:"data,omitempty"`
	}{Msg: "ok", Data: data}
	if err != nil {
		rep.Msg = fmt.Sprintf("%+v", err)
	}

	_ = json.NewEncoder(conn).Encode(rep)
}

func (srv *server) close() {
	_ = srv.ctl.Close()
}
