// Command admin calls the admin gRPC service.
//
//	admin [flags] usage   <user_id>
//	admin [flags] upgrade <user_id> <free|premium>
//	admin [flags] reset   <user_id>
package main

import (
	"context"
	"crypto/tls"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/dtroode/vision-analyzer/internal/api/grpc/adminpb"
)

var errUsage = errors.New("usage: admin [flags] usage|upgrade|reset <user_id> [tier]")

func main() {
	_ = godotenv.Load()

	addr := flag.String("addr", "localhost:50051", "admin gRPC address")
	useTLS := flag.Bool("tls", false, "connect with TLS")
	adminToken := flag.String("token", os.Getenv("ADMIN_TOKEN"), "admin token, defaults to ADMIN_TOKEN")
	timeout := flag.Duration("timeout", 5*time.Second, "call timeout")
	flag.Parse()

	creds := insecure.NewCredentials()
	if *useTLS {
		creds = credentials.NewTLS(&tls.Config{MinVersion: tls.VersionTLS12})
	}

	conn, err := grpc.NewClient(*addr, grpc.WithTransportCredentials(creds))
	if err != nil {
		log.Fatalf("failed to create client: %v", err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+*adminToken)

	if err := run(ctx, adminpb.NewAdminClient(conn), flag.Args(), os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, client *adminpb.AdminClient, args []string, out io.Writer) error {
	if len(args) < 2 {
		return errUsage
	}

	fields := map[string]any{"user_id": args[1]}
	var call func(context.Context, *structpb.Struct, ...grpc.CallOption) (*structpb.Struct, error)

	switch args[0] {
	case "usage":
		call = client.GetUsage
	case "reset":
		call = client.ResetUsage
	case "upgrade":
		if len(args) < 3 {
			return errUsage
		}
		fields["tier"] = args[2]
		call = client.UpgradeTier
	default:
		return errUsage
	}

	req, err := structpb.NewStruct(fields)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := call(ctx, req)
	if err != nil {
		return fmt.Errorf("%s failed: %w", args[0], err)
	}

	b, err := protojson.MarshalOptions{Multiline: true}.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to encode response: %w", err)
	}
	_, err = fmt.Fprintln(out, string(b))
	return err
}
