// Copyright (c) Tailscale Inc & AUTHORS
// SPDX-License-Identifier: BSD-3-Clause

package saf

import "tailscale.com/util/clientmetric"

var (
	metricOpenWrite        = clientmetric.NewCounter("saf_open_write")
	metricOpenWriteFailed  = clientmetric.NewCounter("saf_open_write_failed")
	metricPromote          = clientmetric.NewCounter("saf_promote")
	metricPromoteFailed    = clientmetric.NewCounter("saf_promote_failed")
	metricPromoteCollision = clientmetric.NewCounter("saf_promote_collision")
	metricSourceKept       = clientmetric.NewCounter("saf_promote_source_delete_failed")
	metricOrphanRemoved    = clientmetric.NewCounter("saf_promote_orphan_removed")
)
