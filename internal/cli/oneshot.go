// internal/cli/oneshot.go
// Scripted subcommands: each resolves a connection, performs exactly one
// operation and prints extended JSON to stdout.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/hvmai/mongolens/internal/config"
	"github.com/hvmai/mongolens/internal/db"
	"github.com/hvmai/mongolens/internal/storage"
)

var flagLimit int64

var queryCmd = &cobra.Command{
	Use:   "query <database> <collection> [filter]",
	Short: "Run a find and print the matching documents",
	Long: `Run a find against a collection. The optional filter argument is an
extended-JSON object; with no filter every document matches. A full
query payload (filter/projection/sort/limit) can be piped instead by
passing - as the filter.`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		conn, err := connect(ctx)
		if err != nil {
			return err
		}
		defer conn.Close(context.Background())

		var fields storage.QueryFields
		if len(args) == 3 {
			raw, err := payloadArg(args[2])
			if err != nil {
				return err
			}
			fields = storage.QueryFields{Filter: raw}
			if looksLikePayload(raw) {
				fields, err = storage.ParseQueryFields(raw)
				if err != nil {
					return err
				}
			}
		}
		if flagLimit > 0 {
			fields.Limit = &flagLimit
		}

		spec, err := db.ParseQuerySpec(fields.Filter, fields.Projection, fields.Sort, fields.Limit)
		if err != nil {
			return err
		}
		docs, err := conn.ExecuteQuery(ctx, args[0], args[1], spec)
		if err != nil {
			return err
		}
		return printDocs(docs)
	},
}

var insertCmd = &cobra.Command{
	Use:   "insert <database> <collection> <document>",
	Short: "Insert a single document",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		conn, err := connect(ctx)
		if err != nil {
			return err
		}
		defer conn.Close(context.Background())

		raw, err := payloadArg(args[2])
		if err != nil {
			return err
		}
		doc, err := db.ParseDocumentJSON(raw)
		if err != nil {
			return fmt.Errorf("document: %w", err)
		}
		if err := conn.InsertDocument(ctx, args[0], args[1], doc); err != nil {
			return err
		}
		fmt.Println("inserted 1 document")
		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <database> <collection> <document>",
	Short: "Replace the document whose _id matches the given document",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()

		conn, err := connect(ctx)
		if err != nil {
			return err
		}
		defer conn.Close(context.Background())

		raw, err := payloadArg(args[2])
		if err != nil {
			return err
		}
		doc, err := db.ParseDocumentJSON(raw)
		if err != nil {
			return fmt.Errorf("document: %w", err)
		}
		id, ok := doc["_id"]
		if !ok {
			return fmt.Errorf("document must carry an _id to replace")
		}
		if err := conn.ReplaceDocument(ctx, args[0], args[1], id, doc); err != nil {
			return err
		}
		fmt.Println("replaced 1 document")
		return nil
	},
}

func init() {
	queryCmd.Flags().Int64Var(&flagLimit, "limit", 0, "maximum number of documents to return")
}

func connect(ctx context.Context) (*db.Connection, error) {
	log, err := newLogger()
	if err != nil {
		return nil, err
	}
	paths, err := config.DefaultPaths()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(paths)
	if err != nil {
		return nil, err
	}
	return db.Resolve(ctx, cfg, flagConn, log)
}

// payloadArg reads the payload from stdin when the argument is -.
func payloadArg(arg string) ([]byte, error) {
	if arg == "-" {
		return io.ReadAll(os.Stdin)
	}
	return []byte(arg), nil
}

// looksLikePayload reports whether raw is a full query payload rather
// than a bare filter.
func looksLikePayload(raw []byte) bool {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return false
	}
	for key := range probe {
		switch key {
		case "filter", "projection", "sort", "limit":
			return true
		}
	}
	return false
}

func printDocs(docs []bson.M) error {
	for _, doc := range docs {
		out, err := db.FormatDocumentJSON(doc)
		if err != nil {
			return err
		}
		fmt.Println(out)
	}
	fmt.Fprintf(os.Stderr, "%d documents\n", len(docs))
	return nil
}
