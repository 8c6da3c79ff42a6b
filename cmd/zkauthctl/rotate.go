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

var rotatePK string

var rotateShareCmd = &cobra.Command{
	Use:   "rotate-share",
	Short: "Reconstruct the master key, then re-split and re-store fresh shares",
	Long: `rotate-share logs in to reconstruct the current master key, splits a
brand-new master key into fresh shares under the configured threshold, and
overwrites each backend's stored share. Rotation stops at the first backend
whose write fails: that backend and every backend after it in the stable
order keep their old shares and must be rotated again once the failing
backend recovers.`,
	RunE: runRotateShare,
}

func init() {
	rootCmd.AddCommand(rotateShareCmd)
	rotateShareCmd.Flags().StringVar(&rotatePK, "pk", "", "Hex-encoded public key identifying the user (required)")
	_ = rotateShareCmd.MarkFlagRequired("pk")
}

func runRotateShare(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	core, err := loadAuthCore(ctx)
	if err != nil {
		return err
	}

	// Confirm the user can still authenticate with the current shares
	// before minting a replacement master key.
	if _, err := core.Login(ctx, rotatePK); err != nil {
		return fmt.Errorf("rotate-share: refusing to rotate, login failed: %w", err)
	}

	result, err := core.RotateShares(ctx, rotatePK)
	if err != nil {
		return fmt.Errorf("rotate-share: %w", err)
	}

	fmt.Printf("Rotated shares for %s\n", result.UserID)
	fmt.Printf("  new masterKeyHash: %s\n", result.MasterKeyHash)
	for _, s := range result.Shares {
		fmt.Printf("    [%d] chain=%s receipt=%s\n", s.ShareIndex, s.Chain, s.Receipt)
	}

	return nil
}
