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

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RegistrationsTotal counts successful AuthCore.Register calls.
	RegistrationsTotal = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "registration",
			Name:      "total",
			Help:      "Total number of successful registrations",
		},
	)

	// LoginsTotal counts successful AuthCore.Login calls.
	LoginsTotal = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "login",
			Name:      "total",
			Help:      "Total number of successful logins",
		},
	)

	// LoginFailuresTotal counts logins that failed to collect the threshold
	// of decryptable shares.
	LoginFailuresTotal = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "login",
			Name:      "failures_total",
			Help:      "Total number of logins that failed to reach threshold",
		},
	)

	// SharesUsedHistogram tracks how many shares a successful login actually
	// collected before reaching threshold.
	SharesUsedHistogram = promauto.With(Registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "login",
			Name:      "shares_used",
			Help:      "Number of shares collected by a successful login",
			Buckets:   prometheus.LinearBuckets(1, 1, 10),
		},
	)

	// BackendLatency is the Put/Get/Has latency histogram per backend tag
	// and operation. No backend in this module records into it.
	BackendLatency = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "backend",
			Name:      "operation_duration_seconds",
			Help:      "StorageBackend operation duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 15),
		},
		[]string{"backend", "operation"},
	)

	// TOTPVerificationsTotal counts TOTP verification attempts by outcome.
	TOTPVerificationsTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "twofactor",
			Name:      "totp_verifications_total",
			Help:      "Total number of TOTP verification attempts",
		},
		[]string{"result"}, // success, failure
	)

	// BackupCodeVerificationsTotal counts backup-code verification attempts
	// by outcome.
	BackupCodeVerificationsTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "twofactor",
			Name:      "backup_code_verifications_total",
			Help:      "Total number of backup code verification attempts",
		},
		[]string{"result"},
	)

	// SessionTokensIssuedTotal counts session tokens created.
	SessionTokensIssuedTotal = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sessiontoken",
			Name:      "issued_total",
			Help:      "Total number of session tokens issued",
		},
	)

	// SessionTokensVerifiedTotal counts session-token verification attempts
	// by outcome.
	SessionTokensVerifiedTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sessiontoken",
			Name:      "verified_total",
			Help:      "Total number of session token verification attempts",
		},
		[]string{"result"}, // valid, expired, invalid
	)
)
