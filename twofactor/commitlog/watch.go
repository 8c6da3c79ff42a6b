// Copyright (C) 2025 sage-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

// Package commitlog is an additive, streaming companion to
// twofactor.Fetch: where Fetch takes a slice of already-retrieved
// pointers, Watch subscribes to a WebSocket feed of the external
// second-factor commit log and delivers matching pointers as they are
// published. The commit log server itself remains out of scope; this is
// only the client side of the wire format.
package commitlog

import (
	"context"
	"time"

	"github.com/gorilla/websocket"

	zkautherrors "github.com/zkauth/zkauth-core/errors"
	"github.com/zkauth/zkauth-core/internal/logger"
	"github.com/zkauth/zkauth-core/twofactor"
)

const (
	dialTimeout = 10 * time.Second
	readTimeout = 60 * time.Second
)

// Watch dials url, a WebSocket endpoint streaming TwoFAPointer JSON
// records, and returns a channel delivering only the pointers whose
// LookupKey matches lookupKey. The channel is closed when ctx is
// cancelled, the connection drops, or no record arrives within readTimeout
// (60s).
func Watch(ctx context.Context, url, lookupKey string) (<-chan twofactor.TwoFAPointer, error) {
	dialer := &websocket.Dialer{HandshakeTimeout: dialTimeout}

	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, zkautherrors.Wrap(zkautherrors.BackendUnavailable, "failed to dial commit log stream", err)
	}

	out := make(chan twofactor.TwoFAPointer)

	go func() {
		defer close(out)
		defer conn.Close()

		log := logger.GetDefaultLogger()

		go func() {
			<-ctx.Done()
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			_ = conn.Close()
		}()

		for {
			if err := conn.SetReadDeadline(time.Now().Add(readTimeout)); err != nil {
				return
			}

			var pointer twofactor.TwoFAPointer
			if err := conn.ReadJSON(&pointer); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Warn("commitlog: stream closed unexpectedly", logger.Error(err))
				}
				return
			}

			if pointer.LookupKey != lookupKey {
				continue
			}

			select {
			case out <- pointer:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}
