// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Command deskwatch follows a SupportCenter server from a terminal: it
// prints the open queue whenever it changes and announces new tickets.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/innitec-lgtm/SupportCenter-v1/models"
	"github.com/innitec-lgtm/SupportCenter-v1/syncclient"
	"github.com/innitec-lgtm/SupportCenter-v1/ticketlist"
)

type options struct {
	server  string
	poll    time.Duration
	urgency string
	search  string
	debug   bool
}

func parseFlags(args []string) (options, error) {
	fs := pflag.NewFlagSet("deskwatch", pflag.ContinueOnError)

	var o options
	fs.StringVarP(&o.server, "server", "s", "http://localhost:3000", "SupportCenter server URL")
	fs.DurationVar(&o.poll, "poll", syncclient.DefaultPollInterval, "Ticket poll interval while the live channel is down")
	fs.StringVarP(&o.urgency, "urgency", "u", ticketlist.AllUrgencies, "Show only this urgency (HIGH, MEDIUM, LOW, or ALL)")
	fs.StringVar(&o.search, "search", "", "Show only tickets whose name, requirement, or department contains this text")
	fs.BoolVar(&o.debug, "debug", false, "Verbose logging")

	if err := fs.Parse(args); err != nil {
		return o, err
	}
	if o.poll <= 0 {
		return o, fmt.Errorf("invalid poll interval: %s", o.poll)
	}
	if o.urgency != "" && !strings.EqualFold(o.urgency, ticketlist.AllUrgencies) {
		u, err := models.ParseUrgency(o.urgency)
		if err != nil {
			return o, err
		}
		o.urgency = string(u)
	} else {
		o.urgency = ticketlist.AllUrgencies
	}
	return o, nil
}

func main() {
	o, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	level := slog.LevelInfo
	if o.debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var client *syncclient.Client
	client, err = syncclient.New(syncclient.Options{
		BaseURL:      o.server,
		PollInterval: o.poll,
		OnNewTickets: func(tickets []models.Ticket) {
			for _, t := range tickets {
				fmt.Fprintf(os.Stdout, "NEW  [%s] %s (%s): %s\n", t.Urgency, t.Name, t.Department, t.Requirement)
			}
		},
		OnChange: func(event string) {
			if event == models.EventTickets {
				printQueue(os.Stdout, client.Cache().Tickets(), o, time.Now())
			}
		},
	})
	if err != nil {
		slog.Error("invalid server", "error", err)
		os.Exit(2)
	}

	slog.Info("watching", "server", o.server, "urgency", o.urgency)
	if err := client.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		slog.Error("watch stopped", "error", err)
		os.Exit(1)
	}
}

// printQueue writes the open tickets in work order
func printQueue(w io.Writer, tickets []models.Ticket, o options, now time.Time) {
	queue := ticketlist.Apply(tickets, ticketlist.Query{Text: o.search, Urgency: o.urgency})

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "\n%d pending\n", ticketlist.PendingCount(tickets))
	fmt.Fprintln(tw, "ID\tURGENCY\tSTATUS\tNAME\tDEPARTMENT\tREQUIREMENT\tAGE")
	for _, v := range ticketlist.Views(queue, now) {
		if v.Status == models.StatusCompleted {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			v.ID, v.Urgency, v.Status, v.Name, v.Department, v.Requirement, v.Elapsed)
	}
	tw.Flush()
}
