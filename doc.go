// SPDX-FileCopyrightText: 2025 Jon Thor Kristinsson
// SPDX-License-Identifier: Apache-2.0

/*
Package jobcomp is the root entry point for the job-completion
accounting subsystem: it writes finished-job records into a
Redis-compatible key-value store and answers time-windowed queries
against them, without involving the scheduler's own process.

# Overview

A workload manager reports each job's final accounting record once,
when the job leaves the system. This library encodes that record into
a fixed field layout, writes it alongside a day-bucketed index entry,
and later assembles query criteria, intersects them against the
index, and drains the matching jobs back out — the three verbs named
INDEX, MATCH, and FETCH in the wire contract this package implements
against pkg/kvstore.

# Basic usage

	import (
	    "context"
	    "time"

	    jobcomp "github.com/jontk/slurm-redis-jobcomp"
	    "github.com/jontk/slurm-redis-jobcomp/pkg/record"
	)

	func main() {
	    c, err := jobcomp.New(jobcomp.WithAddr("localhost:6379"))
	    if err != nil {
	        panic(err)
	    }
	    defer c.Close()

	    ctx := context.Background()
	    err = c.WriteJob(ctx, jobcomp.TimeFormatISO8601, record.Job{
	        JobID: 101,
	        Start: time.Now().Add(-time.Hour),
	        End:   time.Now(),
	        State: record.JobStateCompleted,
	    })
	    if err != nil {
	        panic(err)
	    }

	    jobs, err := c.Query(ctx, jobcomp.Criteria{
	        TimeFormat: jobcomp.TimeFormatISO8601,
	        Start:      time.Now().Add(-24 * time.Hour),
	        End:        time.Now(),
	    })
	    if err != nil {
	        panic(err)
	    }
	    _ = jobs
	}

# Package layout

This root package is a thin façade over pkg/client, kept so callers
can depend on a single short import path. The substantive packages
live underneath it:

  - pkg/record holds the job accounting record and its value types.
  - pkg/codec translates a record to and from the wire field vector.
  - pkg/query models a submitted criteria bundle and its match
    predicate.
  - internal/storeside implements INDEX, MATCH, and FETCH as
    client-driven transactional operations against pkg/kvstore.
  - pkg/client wires connection lifecycle, retry, and identity
    resolution around those verbs.
  - pkg/adminserver exposes liveness and counters over HTTP.
  - cmd/jobcomp-cli is a small command-line front end for manual use.

# Non-goals

This subsystem does not provide durability beyond what the backing
store offers, cross-node coordination, schema migration tooling,
streaming or push subscriptions, full-text search, or aggregate
reporting. Callers needing those should build them on top of the
store directly.
*/
package jobcomp
