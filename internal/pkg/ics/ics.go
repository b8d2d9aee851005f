// Package ics writes iCalendar (RFC 5545) feeds.
package ics

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"
)

const ContentType = "text/calendar; charset=utf-8"

type Event struct {
	UID         string
	Summary     string
	Description string
	Start       time.Time
	End         time.Time // exclusive
	AllDay      bool
	Categories  []string
}

// Write renders a VCALENDAR containing events. stamp is used as DTSTAMP for every event.
func Write(w io.Writer, prodID string, stamp time.Time, events []Event) error {
	bw := bufio.NewWriter(w)
	lw := &lineWriter{w: bw}

	lw.line("BEGIN:VCALENDAR")
	lw.line("VERSION:2.0")
	lw.line("PRODID:" + prodID)
	lw.line("CALSCALE:GREGORIAN")
	lw.line("METHOD:PUBLISH")

	dtstamp := stamp.UTC().Format("20060102T150405Z")
	for _, ev := range events {
		lw.line("BEGIN:VEVENT")
		lw.line("UID:" + escapeText(ev.UID))
		lw.line("DTSTAMP:" + dtstamp)
		if ev.AllDay {
			lw.line("DTSTART;VALUE=DATE:" + ev.Start.Format("20060102"))
			lw.line("DTEND;VALUE=DATE:" + ev.End.Format("20060102"))
		} else {
			lw.line("DTSTART:" + ev.Start.UTC().Format("20060102T150405Z"))
			lw.line("DTEND:" + ev.End.UTC().Format("20060102T150405Z"))
		}
		lw.line("SUMMARY:" + escapeText(ev.Summary))
		if ev.Description != "" {
			lw.line("DESCRIPTION:" + escapeText(ev.Description))
		}
		if len(ev.Categories) > 0 {
			cats := make([]string, len(ev.Categories))
			for i, c := range ev.Categories {
				cats[i] = escapeText(c)
			}
			lw.line("CATEGORIES:" + strings.Join(cats, ","))
		}
		lw.line("TRANSP:TRANSPARENT")
		lw.line("END:VEVENT")
	}
	lw.line("END:VCALENDAR")

	if lw.err != nil {
		return fmt.Errorf("write ics: %w", lw.err)
	}
	return bw.Flush()
}

var textEscaper = strings.NewReplacer(
	`\`, `\\`,
	";", `\;`,
	",", `\,`,
	"\r\n", `\n`,
	"\n", `\n`,
	"\r", `\n`,
)

func escapeText(s string) string {
	return textEscaper.Replace(s)
}

type lineWriter struct {
	w   *bufio.Writer
	err error
}

// line writes one content line folded at 75 octets, never splitting a UTF-8 sequence.
func (l *lineWriter) line(s string) {
	if l.err != nil {
		return
	}
	const limit = 75
	first := true
	for len(s) > 0 {
		max := limit
		if !first {
			max = limit - 1 // leading space of the continuation
		}
		cut := len(s)
		if cut > max {
			cut = max
			for cut > 0 && !isRuneStart(s[cut]) {
				cut--
			}
		}
		if !first {
			l.write(" ")
		}
		l.write(s[:cut])
		l.write("\r\n")
		s = s[cut:]
		first = false
	}
}

func (l *lineWriter) write(s string) {
	if l.err == nil {
		_, l.err = l.w.WriteString(s)
	}
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
