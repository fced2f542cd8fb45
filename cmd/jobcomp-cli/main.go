// Command jobcomp-cli ingests or queries job-completion records against
// a running store from the shell, for manual testing and small ad hoc
// reporting.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jontk/slurm-redis-jobcomp/internal/wire"
	"github.com/jontk/slurm-redis-jobcomp/pkg/client"
	"github.com/jontk/slurm-redis-jobcomp/pkg/config"
	"github.com/jontk/slurm-redis-jobcomp/pkg/record"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg := config.NewDefault()
	cfg.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "write":
		runWrite(cfg, os.Args[2:])
	case "query":
		runQuery(cfg, os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: jobcomp-cli <write|query> [flags]")
}

func newClient(cfg *config.Config) (*client.Client, error) {
	return client.New(
		client.WithAddr(cfg.StoreAddr),
		client.WithPassword(cfg.StorePassword),
		client.WithDB(cfg.StoreDB),
		client.WithLocation(cfg.Location),
		client.WithTTLs(time.Duration(cfg.TJob)*time.Second, time.Duration(cfg.TIdx)*time.Second, time.Duration(cfg.TQry)*time.Second),
		client.WithFetchSizing(cfg.FetchCount, cfg.FetchLimit),
		client.WithIdentityCache(cfg.IDCacheSize, cfg.IDCacheTTL),
	)
}

func runWrite(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("write", flag.ExitOnError)
	jobID := fs.Int64("jobid", 0, "job id (required)")
	partition := fs.String("partition", "", "partition name")
	start := fs.Int64("start", 0, "start time, seconds since epoch")
	end := fs.Int64("end", 0, "end time, seconds since epoch")
	uid := fs.Int64("uid", 0, "submitting user id")
	gid := fs.Int64("gid", 0, "submitting group id")
	nnodes := fs.Int64("nnodes", 1, "node count")
	jobName := fs.String("jobname", "", "job name")
	state := fs.String("state", string(record.JobStateCompleted), "job state label")
	timeLimitMinutes := fs.Int64("timelimit", 0, "time limit in minutes")
	fs.Parse(args)

	if *jobID <= 0 {
		fmt.Fprintln(os.Stderr, "write: -jobid is required and must be positive")
		os.Exit(2)
	}

	c, err := newClient(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "write:", err)
		os.Exit(1)
	}
	defer c.Close()

	j := record.Job{
		JobID:     *jobID,
		Partition: *partition,
		Start:     time.Unix(*start, 0).UTC(),
		End:       time.Unix(*end, 0).UTC(),
		UID:       *uid,
		GID:       *gid,
		NNodes:    *nnodes,
		JobName:   *jobName,
		State:     record.JobState(*state),
		TimeLimit: record.TimeLimit{Minutes: *timeLimitMinutes},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := c.WriteJob(ctx, wire.TimeFormatISO8601, j); err != nil {
		fmt.Fprintln(os.Stderr, "write:", err)
		os.Exit(1)
	}
	fmt.Printf("wrote job %d\n", *jobID)
}

func runQuery(cfg *config.Config, args []string) {
	fs := flag.NewFlagSet("query", flag.ExitOnError)
	start := fs.Int64("start", 0, "window start, seconds since epoch")
	end := fs.Int64("end", time.Now().Unix(), "window end, seconds since epoch")
	nnodesMin := fs.Int64("nnodes-min", 0, "minimum node count, 0 = unbounded")
	nnodesMax := fs.Int64("nnodes-max", 0, "maximum node count, 0 = unbounded")
	fs.Parse(args)

	c, err := newClient(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "query:", err)
		os.Exit(1)
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	results, err := c.Query(ctx, client.Criteria{
		TimeFormat: wire.TimeFormatISO8601,
		Start:      time.Unix(*start, 0).UTC(),
		End:        time.Unix(*end, 0).UTC(),
		NNodesMin:  *nnodesMin,
		NNodesMax:  *nnodesMax,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "query:", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(results)
}
