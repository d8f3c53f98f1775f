// Copyright 2026 The go-vrm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command dmpvr-sh is an interactive shell to a dmpvr-srv service.
package main // import "github.com/go-vrm/dmpvr/cmd/dmpvr-sh"

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"strings"

	"github.com/peterh/liner"
)

func main() {
	log.SetPrefix("dmpvr-sh: ")
	log.SetFlags(0)

	addr := flag.String("addr", "localhost:9999", "address of the dmpvr-srv service")

	flag.Parse()

	err := run(*addr)
	if err != nil {
		log.Fatalf("%+v", err)
	}
}

func run(addr string) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("could not dial %q: %w", addr, err)
	}
	defer conn.Close()

	cli := &client{
		conn: conn,
		dec:  json.NewDecoder(conn),
	}

	term := liner.NewLiner()
	defer term.Close()
	term.SetCtrlCAborts(true)

	for {
		line, err := term.Prompt("dmpvr>> ")
		if err != nil {
			if err == liner.ErrPromptAborted {
				return nil
			}
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		term.AppendHistory(line)

		quit, err := cli.exec(line)
		if err != nil {
			log.Printf("%+v", err)
			continue
		}
		if quit {
			return nil
		}
	}
}

type client struct {
	conn net.Conn
	dec  *json.Decoder
}

func (cli *client) exec(line string) (quit bool, err error) {
	toks := strings.Fields(line)
	name := toks[0]

	var args interface{}
	switch name {
	case "program":
		if len(toks) != 2 {
			return false, fmt.Errorf("usage: program <config-file>")
		}
		raw, err := os.ReadFile(toks[1])
		if err != nil {
			return false, fmt.Errorf("could not read %q: %w", toks[1], err)
		}
		args = string(raw)
	case "dump", "id", "slots", "quit":
		// no arguments
	case "help":
		fmt.Println("commands: program <file> | dump | id | slots | quit")
		return false, nil
	default:
		return false, fmt.Errorf("unknown command %q", name)
	}

	msg, data, err := cli.send(name, args)
	if err != nil {
		return false, err
	}
	if msg != "ok" {
		return false, fmt.Errorf("%s", msg)
	}

	switch name {
	case "dump":
		var snap string
		if err := json.Unmarshal(data, &snap); err != nil {
			return false, fmt.Errorf("could not decode snapshot: %w", err)
		}
		fmt.Print(snap)
	case "id", "slots":
		fmt.Printf("%s\n", data)
	case "quit":
		return true, nil
	}
	return false, nil
}

func (cli *client) send(name string, args interface{}) (string, json.RawMessage, error) {
	req := struct {
		Name string      `json:"name"`
		Args interface{} `json:"args,omitempty"`
	}{Name: name, Args: args}

	err := json.NewEncoder(cli.conn).Encode(req)
	if err != nil {
		return "", nil, fmt.Errorf("could not send %q request: %w", name, err)
	}

	var rep struct {
		Msg  string          `json:"msg"`
		Data json.RawMessage `json:"data"`
	}
	err = cli.dec.Decode(&rep)
	if err != nil {
		return "", nil, fmt.Errorf("could not decode %q reply: %w", name, err)
	}
	return rep.Msg, rep.Data, nil
}
