// SAGE - Secure Agent Guarantee Engine
// Copyright (C) 2025 SAGE-X-project
//
// This file is part of SAGE.
//
// SAGE is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SAGE is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with SAGE. If not, see <https://www.gnu.org/licenses/>.

// Package postgres is the durable StorageBackend used for the zcash and
// starknet tags: neither chain has a native Go SDK for the share-storage
// surface this library needs, so shares are persisted in Postgres and keyed
// by the tag/userId composite the reference memory backend also uses.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	zkautherrors "github.com/zkauth/zkauth-core/errors"
	"github.com/zkauth/zkauth-core/sharing"
	"github.com/zkauth/zkauth-core/storage"
)

// Backend implements storage.Backend over a Postgres connection pool.
type Backend struct {
	tag  storage.Tag
	pool *pgxpool.Pool
}

// Schema is the DDL a deployment runs once before using a Backend.
const Schema = `
CREATE TABLE IF NOT EXISTS zkauth_shares (
	backend_tag    TEXT NOT NULL,
	user_id        TEXT NOT NULL,
	share_index    INTEGER NOT NULL,
	encrypted_data TEXT NOT NULL,
	iv             TEXT NOT NULL,
	tag            TEXT NOT NULL,
	receipt        TEXT NOT NULL,
	PRIMARY KEY (backend_tag, user_id)
);
`

// New opens a connection pool to connString and returns a Backend
// registered under tag. It pings the pool once to fail fast on
// misconfiguration.
func New(ctx context.Context, tag storage.Tag, connString string) (*Backend, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, zkautherrors.Wrap(zkautherrors.BackendUnavailable, "failed to create connection pool", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, zkautherrors.Wrap(zkautherrors.BackendUnavailable, "failed to ping database", err)
	}

	return &Backend{tag: tag, pool: pool}, nil
}

// Close releases the underlying connection pool.
func (b *Backend) Close() {
	b.pool.Close()
}

// Tag implements storage.Backend.
func (b *Backend) Tag() storage.Tag {
	return b.tag
}

// Put implements storage.Backend, upserting so repeated registration
// attempts with the same share are idempotent.
func (b *Backend) Put(ctx context.Context, userID string, share sharing.EncryptedShare) (string, error) {
	receipt := fmt.Sprintf("pg-%s-%s", b.tag, userID)

	query := `
		INSERT INTO zkauth_shares (backend_tag, user_id, share_index, encrypted_data, iv, tag, receipt)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (backend_tag, user_id) DO UPDATE SET
			share_index = EXCLUDED.share_index,
			encrypted_data = EXCLUDED.encrypted_data,
			iv = EXCLUDED.iv,
			tag = EXCLUDED.tag
	`

	_, err := b.pool.Exec(ctx, query, string(b.tag), userID, share.ShareIndex, share.EncryptedData, share.IV, share.Tag, receipt)
	if err != nil {
		return "", zkautherrors.Wrap(zkautherrors.BackendUnavailable, "failed to store share", err)
	}

	return receipt, nil
}

// Get implements storage.Backend.
func (b *Backend) Get(ctx context.Context, userID string) (sharing.EncryptedShare, bool, error) {
	query := `
		SELECT share_index, encrypted_data, iv, tag, receipt
		FROM zkauth_shares
		WHERE backend_tag = $1 AND user_id = $2
	`

	var share sharing.EncryptedShare
	err := b.pool.QueryRow(ctx, query, string(b.tag), userID).Scan(
		&share.ShareIndex, &share.EncryptedData, &share.IV, &share.Tag, &share.Receipt,
	)
	if err == pgx.ErrNoRows {
		return sharing.EncryptedShare{}, false, nil
	}
	if err != nil {
		return sharing.EncryptedShare{}, false, zkautherrors.Wrap(zkautherrors.BackendUnavailable, "failed to fetch share", err)
	}

	share.Chain = string(b.tag)
	return share, true, nil
}

// Has implements storage.Backend.
func (b *Backend) Has(ctx context.Context, userID string) (bool, error) {
	query := `SELECT 1 FROM zkauth_shares WHERE backend_tag = $1 AND user_id = $2`

	var one int
	err := b.pool.QueryRow(ctx, query, string(b.tag), userID).Scan(&one)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, zkautherrors.Wrap(zkautherrors.BackendUnavailable, "failed to check share presence", err)
	}
	return true, nil
}
