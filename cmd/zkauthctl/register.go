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
)

var registerPK string

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a new user by splitting a fresh master key across backends",
	RunE:  runRegister,
}

func init() {
	rootCmd.AddCommand(registerCmd)
	registerCmd.Flags().StringVar(&registerPK, "pk", "", "Hex-encoded public key identifying the user (required)")
	_ = registerCmd.MarkFlagRequired("pk")
}

func runRegister(cmd *cobra.Command, args []string) error {
	core, err := loadAuthCore(context.Background())
	if err != nil {
		return err
	}

	result, err := core.Register(context.Background(), registerPK)
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}

	fmt.Printf("Registered user %s\n", result.UserID)
	fmt.Printf("  masterKeyHash: %s\n", result.MasterKeyHash)
	fmt.Printf("  shares stored: %d\n", len(result.Shares))
	for _, s := range result.Shares {
		fmt.Printf("    [%d] chain=%s receipt=%s\n", s.ShareIndex, s.Chain, s.Receipt)
	}

	return nil
}
