// Command ioprof profiles block-device I/O activity from a directory of
// already-expanded trace/extent shards and a device-metadata file,
// producing a spatial and statistical report on stdout.
/*
 * Copyright (c) 2024, NVIDIA CORPORATION. All rights reserved.
 */
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/NVIDIA/ioprof/cmn/cos"
	"github.com/NVIDIA/ioprof/cmn/nlog"
	"github.com/NVIDIA/ioprof/ioprof"
)

var version = "v0.1.0"

func main() {
	app := cli.NewApp()
	app.Name = "ioprof"
	app.Usage = "profile block-device I/O trace shards for spatial and statistical skew"
	app.Version = version

	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "metadata", Usage: "path to the device-metadata text file"},
		cli.StringFlag{Name: "dir", Usage: "directory of already-expanded trace/extent shards"},
		cli.StringFlag{Name: "bucket-size", Value: "1MiB", Usage: "bin granularity, e.g. 1MiB"},
		cli.StringFlag{Name: "percent", Value: "2%", Usage: "histogram section capacity threshold"},
		cli.UintFlag{Name: "top", Value: 10, Usage: "top-files cutoff"},
		cli.UintFlag{Name: "threads", Usage: "worker pool cap (default 4x CPU count)"},
		cli.BoolFlag{Name: "single-threaded", Usage: "force serial path for debugging"},
		cli.BoolFlag{Name: "json", Usage: "emit the report as JSON instead of plain text"},
		cli.StringFlag{Name: "metrics-addr", Usage: "if set, serve Prometheus metrics on this address while ingesting"},
		cli.StringFlag{Name: "disk-index", Usage: "back the file->LBA-range index with an on-disk buntdb store at this path instead of an in-memory map"},
		cli.StringFlag{Name: "logdir", Usage: "write logs to <logdir>/ioprof.log instead of stderr"},
		cli.BoolFlag{Name: "verbose", Usage: "accepted for compatibility; log output is the same with or without it"},
	}

	app.Action = runProfile

	app.Commands = []cli.Command{
		{
			Name:  "version",
			Usage: "print ioprof's version",
			Action: func(*cli.Context) error {
				fmt.Println(app.Version)
				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		cos.Exitf("%v", err)
	}
}

func runProfile(c *cli.Context) error {
	dir := c.String("dir")
	metaPath := c.String("metadata")
	if dir == "" || metaPath == "" {
		return cli.NewExitError("both -dir and -metadata are required", 2)
	}
	if c.String("logdir") != "" {
		if err := nlog.SetLogDirRole(c.String("logdir"), "ioprof"); err != nil {
			return cli.NewExitError(err.Error(), 1)
		}
	}
	nlog.SetTitle("ioprof")

	metaBytes, err := os.ReadFile(metaPath)
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("reading device metadata: %v", err), 3)
	}
	sectorSize, totalLBAs, device, err := ioprof.ParseDeviceMetadata(string(metaBytes))
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("geometry error: %v", err), 4)
	}

	bucketSize, err := cos.ParseSize(c.String("bucket-size"))
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("invalid -bucket-size: %v", err), 2)
	}
	percent, err := cos.ParsePercent(c.String("percent"))
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("invalid -percent: %v", err), 2)
	}

	geo, err := ioprof.NewGeometry(device, sectorSize, bucketSize, totalLBAs)
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("geometry error: %v", err), 4)
	}

	cfg := ioprof.DefaultConfig()
	cfg.BucketSize = bucketSize
	cfg.Percent = percent
	cfg.TopCountLimit = uint32(c.Uint("top"))
	cfg.SingleThreaded = c.Bool("single-threaded")
	if t := c.Uint("threads"); t > 0 {
		cfg.ThreadMax = uint32(t)
	}

	shards, err := ioprof.EnumerateShards(dir)
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("enumerating shards: %v", err), 5)
	}
	if len(shards) == 0 {
		return cli.NewExitError("no trace or extent shards found under -dir", 5)
	}

	orch := ioprof.NewOrchestrator(geo, cfg)

	if addr := c.String("metrics-addr"); addr != "" {
		m := ioprof.NewMetrics()
		m.ServeBackground(addr)
		orch.Metrics = m
	}

	if path := c.String("disk-index"); path != "" {
		store, err := ioprof.OpenExtentStore(path)
		if err != nil {
			return cli.NewExitError(fmt.Sprintf("opening disk index: %v", err), 2)
		}
		defer store.Close()
		orch.ExtentStore = store
	}

	rep, err := orch.Run(context.Background(), shards, nil)
	if err != nil {
		return cli.NewExitError(fmt.Sprintf("worker pool failure: %v", err), 6)
	}

	if c.Bool("json") {
		return ioprof.WriteJSON(os.Stdout, rep, orch.RunID)
	}
	ioprof.WriteText(os.Stdout, rep, orch.RunID)
	return nil
}
