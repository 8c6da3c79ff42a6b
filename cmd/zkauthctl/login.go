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

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zkauth/zkauth-core/session"
)

var (
	loginPK    string
	loginTTLMs int64
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Reconstruct the master key from a threshold of stored shares",
	RunE:  runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringVar(&loginPK, "pk", "", "Hex-encoded public key identifying the user (required)")
	loginCmd.Flags().Int64Var(&loginTTLMs, "ttl-ms", session.DefaultTTL, "Session time-to-live in milliseconds")
	_ = loginCmd.MarkFlagRequired("pk")
}

func runLogin(cmd *cobra.Command, args []string) error {
	core, err := loadAuthCore(context.Background())
	if err != nil {
		return err
	}

	result, err := core.Login(context.Background(), loginPK)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	sess := core.CreateSession(result, loginTTLMs)

	fmt.Printf("Logged in as %s\n", result.UserID)
	fmt.Printf("  sharesUsed: %d\n", result.SharesUsed)
	fmt.Printf("  sessionExpiresAt: %s\n", sess.ExpiresAt.Format("2006-01-02T15:04:05Z07:00"))

	return nil
}
