// Copyright 2026 The go-vrm Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command dmpvr-ctl watches the run journal of a dmpvr-srv service and
// raises alerts on failed programming runs.
package main // import "github.com/go-vrm/dmpvr/cmd/dmpvr-ctl"

import (
	"crypto/tls"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	mail "gopkg.in/gomail.v2"

	"github.com/go-vrm/dmpvr/raa"
)

func main() {
	var (
		dir  = flag.String("dir", "/var/run/dmpvr", "directory holding the run journal to monitor")
		freq = flag.Duration("freq", 30*time.Second, "probing interval")
	)

	flag.Parse()

	log.SetPrefix("dmpvr-ctl: ")
	log.SetFlags(0)

	run(*dir, *freq)
}

func run(dir string, freq time.Duration) {
	mon := &monitor{
		dir:    dir,
		freq:   freq,
		alerts: make(map[string]int),
	}
	log.Printf("monitoring %q...", dir)
	mon.loop()
}

type monitor struct {
	dir  string
	freq time.Duration

	seen   int            // journal records already processed
	alerts map[string]int // number of alerts per outcome
}

func (mon *monitor) loop() {
	tick := time.NewTicker(mon.freq)
	defer tick.Stop()

	for range tick.C {
		err := mon.probe()
		if err != nil {
			log.Printf("could not probe journal: %+v", err)
		}
	}
}

func (mon *monitor) probe() error {
	fname := filepath.Join(mon.dir, "runs.json")
	f, err := os.Open(fname)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("could not open journal %q: %w", fname, err)
	}
	defer f.Close()

	var (
		recs []raa.RunRecord
		dec  = json.NewDecoder(f)
	)
	for dec.More() {
		var rec raa.RunRecord
		err := dec.Decode(&rec)
		if err != nil {
			return fmt.Errorf("could not decode journal %q: %w", fname, err)
		}
		recs = append(recs, rec)
	}

	if len(recs) < mon.seen {
		// journal was rotated.
		mon.seen = 0
	}
	for _, rec := range recs[mon.seen:] {
		if rec.Outcome == "success" {
			continue
		}
		mon.alert(rec)
	}
	mon.seen = len(recs)
	return nil
}

func (mon *monitor) alert(rec raa.RunRecord) {
	log.Printf("programming run failed at %v: outcome=%q err=%q",
		rec.Time.Format(time.RFC3339), rec.Outcome, rec.Err,
	)
	mon.alerts[rec.Outcome]++

	const maxAlerts = 5
	if mon.alerts[rec.Outcome] < maxAlerts {
		mon.alertMail(rec)
	}
}

var (
	alertMailUsr  = os.Getenv("MAIL_USERNAME")
	alertMailPwd  = os.Getenv("MAIL_PASSWORD")
	alertMailSrv  = os.Getenv("MAIL_SERVER")
	alertMailPort = atoi(os.Getenv("MAIL_PORT"))
	alertMailTgts = strings.Split(os.Getenv("MAIL_TGTS"), ",")
)

func (mon *monitor) alertMail(rec raa.RunRecord) {
	if alertMailUsr == "" || alertMailPwd == "" ||
		alertMailSrv == "" || alertMailPort == 0 ||
		len(alertMailTgts) == 0 {
		log.Printf("could not send mail alert: missing credentials")
		return
	}

	msg := mail.NewMessage()
	msg.SetHeader("From", alertMailUsr)
	msg.SetHeader("Bcc", alertMailTgts...)
	msg.SetHeader("Subject", fmt.Sprintf("[dmpvr-ctl] programming alert: %s", rec.Outcome))
	msg.SetBody("text/plain", fmt.Sprintf(
		"time: %v\noutcome: %s\nslots: %d\ncommands: %d\nerror: %s",
		rec.Time.Format(time.RFC3339), rec.Outcome, rec.Slots, rec.Cmds, rec.Err,
	))

	dial := mail.NewDialer(alertMailSrv, alertMailPort, alertMailUsr, alertMailPwd)
	dial.TLSConfig = &tls.Config{
		InsecureSkipVerify: true,
	}
	err := dial.DialAndSend(msg)
	if err != nil {
		log.Printf("could not send mail alert: %+v", err)
	}
}

func atoi(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return v
}
