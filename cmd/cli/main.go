// Command kdectl is a CLI client for the KDE gRPC server, adapted from
// the teacher's cmd/cli (a vector-cli client talking to a VectorDB gRPC
// server the same way: global flags, one FlagSet per subcommand,
// connectToServer dialing insecure loopback gRPC).
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/arimanyus/meanshift/pkg/api/grpc/proto"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const version = "1.0.0"

var (
	serverAddr string
	timeout    time.Duration
)

func main() {
	if len(os.Args) < 2 {
		showUsage()
		os.Exit(1)
	}

	flag.StringVar(&serverAddr, "server", "localhost:50051", "gRPC server address")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "request timeout")

	command := os.Args[1]

	switch command {
	case "models":
		handleModels(os.Args[2:])
	case "create":
		handleCreate(os.Args[2:])
	case "delete-model":
		handleDeleteModel(os.Args[2:])
	case "data":
		handleSetData(os.Args[2:])
	case "kernel":
		handleSetKernel(os.Args[2:])
	case "scale":
		handleSetScale(os.Args[2:])
	case "prob":
		handleProb(os.Args[2:])
	case "mode":
		handleMode(os.Args[2:])
	case "cluster":
		handleCluster(os.Args[2:])
	case "assign":
		handleAssign(os.Args[2:])
	case "sample":
		handleSample(os.Args[2:])
	case "bootstrap":
		handleBootstrap(os.Args[2:])
	case "stats":
		handleStats(os.Args[2:])
	case "version":
		fmt.Printf("kdectl version %s\n", version)
	case "help", "-h", "--help":
		showUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		showUsage()
		os.Exit(1)
	}
}

func handleModels(args []string) {
	fs := flag.NewFlagSet("models", flag.ExitOnError)
	fs.StringVar(&serverAddr, "server", serverAddr, "gRPC server address")
	fs.Parse(args)

	client, conn := connectToServer()
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	resp, err := client.ListModels(ctx, &proto.Empty{})
	fatalIfErr(err)

	if len(resp.Models) == 0 {
		fmt.Println("No models hosted")
		return
	}
	for _, m := range resp.Models {
		fmt.Println(m)
	}
}

func handleCreate(args []string) {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	var (
		model      = fs.String("model", "", "model name (required)")
		quality    = fs.Float64("quality", 0.99, "tail-truncation quality fraction")
		epsilon    = fs.Float64("epsilon", 1e-6, "convergence threshold")
		iterCap    = fs.Int("iter-cap", 200, "iteration cap")
		mergeRange = fs.Float64("merge-range", 1, "balls-index cluster merge radius")
	)
	fs.StringVar(&serverAddr, "server", serverAddr, "gRPC server address")
	fs.Parse(args)

	if *model == "" {
		fmt.Println("Error: -model is required")
		fs.Usage()
		os.Exit(1)
	}

	client, conn := connectToServer()
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	req := &proto.CreateModelRequest{
		Model: *model,
		Params: proto.Params{
			Quality:        *quality,
			Epsilon:        *epsilon,
			IterCap:        *iterCap,
			IdentDist:      1e-3,
			MergeRange:     *mergeRange,
			MergeCheckStep: 4,
		},
	}
	_, err := client.CreateModel(ctx, req)
	fatalIfErr(err)

	fmt.Printf("created model %q\n", *model)
}

func handleDeleteModel(args []string) {
	fs := flag.NewFlagSet("delete-model", flag.ExitOnError)
	model := fs.String("model", "", "model name (required)")
	fs.StringVar(&serverAddr, "server", serverAddr, "gRPC server address")
	fs.Parse(args)

	requireModel(fs, *model)

	client, conn := connectToServer()
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	_, err := client.DeleteModel(ctx, &proto.DeleteModelRequest{Model: *model})
	fatalIfErr(err)

	fmt.Printf("deleted model %q\n", *model)
}

func handleSetData(args []string) {
	fs := flag.NewFlagSet("data", flag.ExitOnError)
	var (
		model        = fs.String("model", "", "model name (required)")
		rowsStr      = fs.String("rows", "", "rows as a JSON 2D array, e.g. [[1,2],[3,4]] (required)")
		weightColumn = fs.Int("weight-column", -1, "column index carrying the weight, -1 for unweighted")
	)
	fs.StringVar(&serverAddr, "server", serverAddr, "gRPC server address")
	fs.Parse(args)

	requireModel(fs, *model)
	if *rowsStr == "" {
		fmt.Println("Error: -rows is required")
		fs.Usage()
		os.Exit(1)
	}

	var rows [][]float64
	if err := json.Unmarshal([]byte(*rowsStr), &rows); err != nil {
		fmt.Printf("Error parsing rows: %v\n", err)
		os.Exit(1)
	}

	client, conn := connectToServer()
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	_, err := client.SetData(ctx, &proto.SetDataRequest{Model: *model, Rows: rows, WeightColumn: *weightColumn})
	fatalIfErr(err)

	fmt.Printf("loaded %d rows into %q\n", len(rows), *model)
}

func handleSetKernel(args []string) {
	fs := flag.NewFlagSet("kernel", flag.ExitOnError)
	var (
		model  = fs.String("model", "", "model name (required)")
		kernel = fs.String("name", "gaussian", "kernel name, e.g. gaussian or fisher(4.0)")
	)
	fs.StringVar(&serverAddr, "server", serverAddr, "gRPC server address")
	fs.Parse(args)

	requireModel(fs, *model)

	client, conn := connectToServer()
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	_, err := client.SetKernel(ctx, &proto.SetKernelRequest{Model: *model, Kernel: *kernel})
	fatalIfErr(err)

	fmt.Printf("set kernel %q on %q\n", *kernel, *model)
}

func handleSetScale(args []string) {
	fs := flag.NewFlagSet("scale", flag.ExitOnError)
	var (
		model       = fs.String("model", "", "model name (required)")
		multStr     = fs.String("mult", "", "per-feature scale multipliers as a JSON array (required)")
		weightScale = fs.Float64("weight-scale", 1, "weight channel scale")
	)
	fs.StringVar(&serverAddr, "server", serverAddr, "gRPC server address")
	fs.Parse(args)

	requireModel(fs, *model)
	if *multStr == "" {
		fmt.Println("Error: -mult is required")
		fs.Usage()
		os.Exit(1)
	}

	var mult []float64
	if err := json.Unmarshal([]byte(*multStr), &mult); err != nil {
		fmt.Printf("Error parsing mult: %v\n", err)
		os.Exit(1)
	}

	client, conn := connectToServer()
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	_, err := client.SetScale(ctx, &proto.SetScaleRequest{Model: *model, Mult: mult, WeightScale: *weightScale})
	fatalIfErr(err)

	fmt.Printf("set scale on %q\n", *model)
}

func handleProb(args []string) {
	fs := flag.NewFlagSet("prob", flag.ExitOnError)
	var (
		model    = fs.String("model", "", "model name (required)")
		queryStr = fs.String("query", "", "query point as a JSON array (required)")
	)
	fs.StringVar(&serverAddr, "server", serverAddr, "gRPC server address")
	fs.Parse(args)

	requireModel(fs, *model)
	query := parseVector(fs, *queryStr, "-query")

	client, conn := connectToServer()
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	resp, err := client.Prob(ctx, &proto.ProbRequest{Model: *model, Query: query})
	fatalIfErr(err)

	fmt.Printf("prob: %.10g\n", resp.Prob)
}

func handleMode(args []string) {
	fs := flag.NewFlagSet("mode", flag.ExitOnError)
	var (
		model   = fs.String("model", "", "model name (required)")
		seedStr = fs.String("seed", "", "seed point as a JSON array (required)")
	)
	fs.StringVar(&serverAddr, "server", serverAddr, "gRPC server address")
	fs.Parse(args)

	requireModel(fs, *model)
	seed := parseVector(fs, *seedStr, "-seed")

	client, conn := connectToServer()
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	resp, err := client.Mode(ctx, &proto.ModeRequest{Model: *model, Seed: seed})
	fatalIfErr(err)

	fmt.Printf("mode: %s\n", formatVector(resp.Point))
}

func handleCluster(args []string) {
	fs := flag.NewFlagSet("cluster", flag.ExitOnError)
	model := fs.String("model", "", "model name (required)")
	fs.StringVar(&serverAddr, "server", serverAddr, "gRPC server address")
	fs.Parse(args)

	requireModel(fs, *model)

	client, conn := connectToServer()
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	resp, err := client.Cluster(ctx, &proto.ModelRequest{Model: *model})
	fatalIfErr(err)

	fmt.Printf("Found %d mode(s)\n", len(resp.Modes))
	for i, mode := range resp.Modes {
		fmt.Printf("  cluster %d mode: %s\n", i, formatVector(mode))
	}
	fmt.Printf("assignments: %v\n", resp.Assignments)
}

func handleAssign(args []string) {
	fs := flag.NewFlagSet("assign", flag.ExitOnError)
	var (
		model    = fs.String("model", "", "model name (required)")
		queryStr = fs.String("query", "", "query point as a JSON array (required)")
	)
	fs.StringVar(&serverAddr, "server", serverAddr, "gRPC server address")
	fs.Parse(args)

	requireModel(fs, *model)
	query := parseVector(fs, *queryStr, "-query")

	client, conn := connectToServer()
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	resp, err := client.AssignCluster(ctx, &proto.AssignRequest{Model: *model, Query: query})
	fatalIfErr(err)

	fmt.Printf("cluster_id: %d\nmode: %s\n", resp.ClusterID, formatVector(resp.Mode))
}

func handleSample(args []string) {
	fs := flag.NewFlagSet("sample", flag.ExitOnError)
	var (
		model  = fs.String("model", "", "model name (required)")
		stream = fs.Uint("stream", 0, "RNG stream identifier")
		sample = fs.Uint("sample", 0, "RNG sample counter")
	)
	fs.StringVar(&serverAddr, "server", serverAddr, "gRPC server address")
	fs.Parse(args)

	requireModel(fs, *model)

	client, conn := connectToServer()
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	idx := proto.RNGIndex{StreamLo: uint32(*stream), Sample: uint32(*sample)}
	resp, err := client.Draw(ctx, &proto.DrawRequest{Model: *model, Index: idx})
	fatalIfErr(err)

	fmt.Printf("draw: %s\n", formatVector(resp.Point))
}

func handleBootstrap(args []string) {
	fs := flag.NewFlagSet("bootstrap", flag.ExitOnError)
	var (
		model  = fs.String("model", "", "model name (required)")
		stream = fs.Uint("stream", 0, "RNG stream identifier")
		sample = fs.Uint("sample", 0, "RNG sample counter")
	)
	fs.StringVar(&serverAddr, "server", serverAddr, "gRPC server address")
	fs.Parse(args)

	requireModel(fs, *model)

	client, conn := connectToServer()
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	idx := proto.RNGIndex{StreamLo: uint32(*stream), Sample: uint32(*sample)}
	resp, err := client.Bootstrap(ctx, &proto.DrawRequest{Model: *model, Index: idx})
	fatalIfErr(err)

	fmt.Printf("bootstrap: %s\n", formatVector(resp.Point))
}

func handleStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	model := fs.String("model", "", "model name (required)")
	fs.StringVar(&serverAddr, "server", serverAddr, "gRPC server address")
	fs.Parse(args)

	requireModel(fs, *model)

	client, conn := connectToServer()
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	resp, err := client.Stats(ctx, &proto.ModelRequest{Model: *model})
	fatalIfErr(err)

	fmt.Println("=== Model Statistics ===")
	fmt.Printf("Exemplars: %d\n", resp.Exemplars)
	fmt.Printf("Features:  %d\n", resp.Features)
	fmt.Printf("Weight:    %.6f\n", resp.Weight)
	fmt.Printf("Kernel:    %s\n", resp.Kernel)
}

func requireModel(fs *flag.FlagSet, model string) {
	if model == "" {
		fmt.Println("Error: -model is required")
		fs.Usage()
		os.Exit(1)
	}
}

func parseVector(fs *flag.FlagSet, s, flagName string) []float64 {
	if s == "" {
		fmt.Printf("Error: %s is required\n", flagName)
		fs.Usage()
		os.Exit(1)
	}
	var v []float64
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		fmt.Printf("Error parsing %s: %v\n", flagName, err)
		os.Exit(1)
	}
	return v
}

func fatalIfErr(err error) {
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func connectToServer() (proto.KDEClient, *grpc.ClientConn) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, err := grpc.DialContext(ctx, serverAddr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(proto.JSONCodec{})),
		grpc.WithBlock(),
	)
	if err != nil {
		fmt.Printf("Failed to connect to server at %s: %v\n", serverAddr, err)
		os.Exit(1)
	}

	return proto.NewKDEClient(conn), conn
}

func formatVector(vector []float64) string {
	if len(vector) == 0 {
		return "[]"
	}
	if len(vector) > 10 {
		first := make([]string, 5)
		last := make([]string, 5)
		for i := 0; i < 5; i++ {
			first[i] = fmt.Sprintf("%.4f", vector[i])
			last[i] = fmt.Sprintf("%.4f", vector[len(vector)-5+i])
		}
		return fmt.Sprintf("[%s ... %s] (dim=%d)", strings.Join(first, ", "), strings.Join(last, ", "), len(vector))
	}
	elements := make([]string, len(vector))
	for i, v := range vector {
		elements[i] = fmt.Sprintf("%.4f", v)
	}
	return fmt.Sprintf("[%s]", strings.Join(elements, ", "))
}

func showUsage() {
	fmt.Println(`kdectl - CLI client for the KDE gRPC server

Usage:
  kdectl <command> [options]

Commands:
  models          List hosted models
  create          Create a new model
  delete-model    Delete a model
  data            Load exemplar rows into a model
  kernel          Set a model's kernel
  scale           Set a model's per-feature scale
  prob            Evaluate the density at a query point
  mode            Run mean shift from a seed point
  cluster         Cluster every exemplar and report modes/assignments
  assign          Resolve a query point to a cluster id
  sample          Draw a sample from a model
  bootstrap       Draw a bootstrap sample from a model
  stats           Show a model's exemplar/feature/weight/kernel summary
  version         Show version
  help            Show this help message

Options (given after the command):
  -server ADDRESS   gRPC server address (default: localhost:50051)

Each request times out after 30s; the timeout cannot be set from the
command line.

Examples:

  kdectl create -model demo -quality 0.99

  kdectl data -model demo -rows '[[0,0],[1,1],[2,2]]'

  kdectl kernel -model demo -name gaussian

  kdectl prob -model demo -query '[0.5,0.5]'

  kdectl mode -model demo -seed '[0.5,0.5]'

  kdectl cluster -model demo

  kdectl stats -model demo`)
}
