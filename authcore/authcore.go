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

// Package authcore orchestrates registration and login across the
// configured StorageBackend set: threshold splitting on register, threshold
// reconstruction with partial-failure tolerance on login, and the session
// object a successful login produces.
package authcore

import (
	"context"
	"fmt"

	zkautherrors "github.com/zkauth/zkauth-core/errors"
	"github.com/zkauth/zkauth-core/internal/logger"
	"github.com/zkauth/zkauth-core/internal/metrics"
	"github.com/zkauth/zkauth-core/masterkey"
	"github.com/zkauth/zkauth-core/session"
	"github.com/zkauth/zkauth-core/sharing"
	"github.com/zkauth/zkauth-core/storage"
)

// Config configures an AuthCore instance.
type Config struct {
	Backends    *storage.Registry
	Threshold   int // default 2
	TotalShares int // default 3
	Logger      *logger.StructuredLogger
}

// AuthCore orchestrates registration and login across a set of enabled
// storage backends.
type AuthCore struct {
	backends    *storage.Registry
	threshold   int
	totalShares int
	log         *logger.StructuredLogger
}

// New constructs an AuthCore. Fails with ConfigError if fewer backends are
// enabled than the threshold, or if T<2 or N>255.
func New(cfg Config) (*AuthCore, error) {
	threshold := cfg.Threshold
	if threshold == 0 {
		threshold = 2
	}
	totalShares := cfg.TotalShares
	if totalShares == 0 {
		totalShares = 3
	}
	log := cfg.Logger
	if log == nil {
		log = logger.GetDefaultLogger()
	}

	if threshold < 2 {
		return nil, zkautherrors.New(zkautherrors.ConfigError, "threshold must be at least 2")
	}
	if totalShares > sharing.MaxShares {
		return nil, zkautherrors.New(zkautherrors.ConfigError, fmt.Sprintf("totalShares cannot exceed %d", sharing.MaxShares))
	}
	if cfg.Backends == nil || cfg.Backends.Len() < threshold {
		return nil, zkautherrors.New(zkautherrors.ConfigError, "fewer enabled backends than threshold")
	}

	return &AuthCore{
		backends:    cfg.Backends,
		threshold:   threshold,
		totalShares: totalShares,
		log:         log,
	}, nil
}

// RegisterResult is the outcome of a successful registration.
type RegisterResult struct {
	Success       bool
	UserID        string
	Shares        []sharing.EncryptedShare
	MasterKeyHash string
}

// LoginResult is the outcome of a successful login.
type LoginResult struct {
	Success    bool
	UserID     string
	MasterKey  masterkey.MasterKey
	SharesUsed int
}

// Register derives the user id from pkHex, generates a fresh master key,
// splits it into the configured N shares, and stores one share with each of
// the first N enabled backends in the stable ordering. A failed Put aborts
// the registration; the caller must treat the user as unregistered until a
// subsequent call to Register succeeds end-to-end.
func (a *AuthCore) Register(ctx context.Context, pkHex string) (RegisterResult, error) {
	uid, err := masterkey.GenerateUserID(pkHex)
	if err != nil {
		return RegisterResult{}, err
	}

	registered, err := a.IsRegistered(ctx, uid)
	if err != nil {
		return RegisterResult{}, err
	}
	if registered {
		return RegisterResult{}, zkautherrors.New(zkautherrors.AlreadyRegistered, fmt.Sprintf("user %q is already registered", uid))
	}

	mk, err := masterkey.Generate()
	if err != nil {
		return RegisterResult{}, err
	}

	split, err := sharing.Split(mk, a.threshold, a.totalShares)
	if err != nil {
		return RegisterResult{}, err
	}

	backends := a.backends.Enabled()
	tags := make([]string, len(backends))
	for i, b := range backends {
		tags[i] = string(b.Tag())
	}
	shares := make([]sharing.EncryptedShare, 0, a.totalShares)

	for i, shareData := range split.Shares {
		idx := i + 1
		tag := sharing.ChainForIndex(idx, tags)
		backend, err := a.backends.Get(storage.Tag(tag))
		if err != nil {
			return RegisterResult{}, err
		}

		envelope, err := sharing.EncryptShare(shareData, idx, tag, pkHex)
		if err != nil {
			return RegisterResult{}, err
		}

		receipt, err := backend.Put(ctx, uid, envelope)
		if err != nil {
			a.log.Error("register: backend put failed, aborting registration",
				logger.UserID(uid), logger.BackendTag(string(backend.Tag())), logger.Error(err))
			return RegisterResult{}, zkautherrors.Wrap(zkautherrors.BackendUnavailable, "failed to store share", err)
		}
		envelope.Receipt = receipt

		shares = append(shares, envelope)
	}

	metrics.RegistrationsTotal.Inc()
	a.log.Info("register: success", logger.UserID(uid), logger.ShareCount(len(shares)), logger.Redacted("masterKeyHash", masterkey.Hash(mk)))

	return RegisterResult{
		Success:       true,
		UserID:        uid,
		Shares:        shares,
		MasterKeyHash: masterkey.Hash(mk),
	}, nil
}

// Login derives the user id from pkHex, polls enabled backends in the
// stable order until the threshold of decryptable shares is collected, and
// reconstructs the master key. BackendUnavailable and AuthenticationFailure
// on an individual backend are logged and do not abort the login.
func (a *AuthCore) Login(ctx context.Context, pkHex string) (LoginResult, error) {
	uid, err := masterkey.GenerateUserID(pkHex)
	if err != nil {
		return LoginResult{}, err
	}

	registered, err := a.IsRegistered(ctx, uid)
	if err != nil {
		return LoginResult{}, err
	}
	if !registered {
		return LoginResult{}, zkautherrors.New(zkautherrors.NotRegistered, fmt.Sprintf("user %q is not registered", uid))
	}

	var collected []sharing.ShareData
	for _, backend := range a.backends.Enabled() {
		if len(collected) >= a.threshold {
			break
		}

		envelope, found, err := backend.Get(ctx, uid)
		if err != nil {
			a.log.Warn("login: backend unavailable, skipping", logger.BackendTag(string(backend.Tag())), logger.Error(err))
			continue
		}
		if !found {
			continue
		}

		share, err := sharing.DecryptShare(envelope, pkHex)
		if err != nil {
			a.log.Warn("login: share failed to decrypt, skipping", logger.BackendTag(string(backend.Tag())), logger.Error(err))
			continue
		}

		collected = append(collected, share)
	}

	if len(collected) < a.threshold {
		metrics.LoginFailuresTotal.Inc()
		return LoginResult{}, zkautherrors.New(zkautherrors.InsufficientShares,
			fmt.Sprintf("collected %d of %d required shares", len(collected), a.threshold))
	}

	keyHex, err := sharing.Combine(collected)
	if err != nil {
		return LoginResult{}, err
	}

	mk, err := masterkey.FromHex(keyHex)
	if err != nil {
		return LoginResult{}, err
	}

	metrics.LoginsTotal.Inc()
	metrics.SharesUsedHistogram.Observe(float64(len(collected)))
	a.log.Info("login: success", logger.UserID(uid), logger.ShareCount(len(collected)))

	return LoginResult{
		Success:    true,
		UserID:     uid,
		MasterKey:  mk,
		SharesUsed: len(collected),
	}, nil
}

// IsRegistered reports whether at least the threshold of backends have a
// share stored for uid.
func (a *AuthCore) IsRegistered(ctx context.Context, uid string) (bool, error) {
	count := 0
	for _, backend := range a.backends.Enabled() {
		has, err := backend.Has(ctx, uid)
		if err != nil {
			a.log.Warn("isRegistered: backend unavailable, skipping", logger.BackendTag(string(backend.Tag())), logger.Error(err))
			continue
		}
		if has {
			count++
		}
	}
	return count >= a.threshold, nil
}

// CreateSession wraps a successful LoginResult into a Session with the given
// time-to-live (defaulting to 24h).
func (a *AuthCore) CreateSession(result LoginResult, ttlMs int64) session.Session {
	return session.New(result.UserID, result.MasterKey, ttlMs)
}

// RotateShares mints a fresh master key for an already-registered user and
// overwrites every enabled backend's stored share with a share of it. The
// caller is responsible for verifying the user can still authenticate
// before calling this — RotateShares does not itself require a successful
// login, since a locked-out user recovering via an out-of-band channel is
// exactly the scenario rotation exists for.
func (a *AuthCore) RotateShares(ctx context.Context, pkHex string) (RegisterResult, error) {
	uid, err := masterkey.GenerateUserID(pkHex)
	if err != nil {
		return RegisterResult{}, err
	}

	registered, err := a.IsRegistered(ctx, uid)
	if err != nil {
		return RegisterResult{}, err
	}
	if !registered {
		return RegisterResult{}, zkautherrors.New(zkautherrors.NotRegistered, fmt.Sprintf("user %q is not registered", uid))
	}

	mk, err := masterkey.Generate()
	if err != nil {
		return RegisterResult{}, err
	}

	split, err := sharing.Split(mk, a.threshold, a.totalShares)
	if err != nil {
		return RegisterResult{}, err
	}

	backends := a.backends.Enabled()
	tags := make([]string, len(backends))
	for i, b := range backends {
		tags[i] = string(b.Tag())
	}
	shares := make([]sharing.EncryptedShare, 0, a.totalShares)

	for i, shareData := range split.Shares {
		idx := i + 1
		tag := sharing.ChainForIndex(idx, tags)
		backend, err := a.backends.Get(storage.Tag(tag))
		if err != nil {
			return RegisterResult{}, err
		}

		envelope, err := sharing.EncryptShare(shareData, idx, tag, pkHex)
		if err != nil {
			return RegisterResult{}, err
		}

		receipt, err := backend.Put(ctx, uid, envelope)
		if err != nil {
			a.log.Error("rotateShares: backend put failed, rotation incomplete",
				logger.UserID(uid), logger.BackendTag(string(backend.Tag())), logger.Error(err))
			return RegisterResult{}, zkautherrors.Wrap(zkautherrors.BackendUnavailable, "failed to store rotated share", err)
		}
		envelope.Receipt = receipt

		shares = append(shares, envelope)
	}

	a.log.Info("rotateShares: success", logger.UserID(uid), logger.ShareCount(len(shares)), logger.Redacted("masterKeyHash", masterkey.Hash(mk)))

	return RegisterResult{
		Success:       true,
		UserID:        uid,
		Shares:        shares,
		MasterKeyHash: masterkey.Hash(mk),
	}, nil
}
