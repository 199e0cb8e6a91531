// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package syncclient keeps a local copy of the helpdesk collections in step
with a running server.

	c, err := syncclient.New(syncclient.Options{
		BaseURL:      "http://localhost:3000",
		OnNewTickets: notify,
	})
	go c.Run(ctx)

Run fetches /api/config and the three collections, then follows the
/ws channel. Every frame replaces a whole collection in the Cache. While
the channel is down the ticket list is polled every PollInterval (15s by
default) and the socket is redialed with exponential backoff.

New tickets are found by comparing ticket IDs with the previous copy, so
a ticket that is added while another is removed is still reported. The
first load never reports anything.
*/
package syncclient
