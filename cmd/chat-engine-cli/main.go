// Package main provides the Chat Engine CLI entrypoint.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/astra-ai/astra/libs/chat-engine/internal/config"
	"github.com/astra-ai/astra/libs/chat-engine/internal/observability"
)

const version = "0.3.0"

var (
	// Global flags
	cfgFile    string
	apiURL     string
	outputJSON bool
	noColor    bool

	// Configuration and logger
	cfg    *config.Config
	logger *observability.Logger
	ui     *UI
	client *apiClient
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "chat-engine-cli",
	Short: "Chat Engine CLI for querying the automotive assistant",
	Long: `Chat Engine CLI talks to a running Chat Engine API server.

Use this tool to:
- Ask the assistant questions, optionally about a specific car
- Browse the car inventory and its reviews
- Inspect routing metrics and backend health
- Pin queries to the cloud or local backend

All commands support --json for automation.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logFormat := "console"
		if outputJSON {
			logFormat = "json"
		}

		logger = observability.NewLogger(observability.LogConfig{
			Level:       cfg.Observability.LogLevel,
			Format:      logFormat,
			ServiceName: "chat-engine-cli",
		})

		if apiURL == "" {
			apiURL = os.Getenv("CHAT_ENGINE_API")
		}
		if apiURL == "" {
			apiURL = fmt.Sprintf("http://%s:%d", cfg.Server.Host, cfg.Server.Port)
		}

		ui = NewUI(outputJSON, noColor)
		client = newAPIClient(apiURL, 60*time.Second)
		return nil
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default: uses env vars)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "API base URL (default: CHAT_ENGINE_API or config server address)")
	rootCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	// Add subcommands
	rootCmd.AddCommand(newAskCmd())
	rootCmd.AddCommand(newCarsCmd())
	rootCmd.AddCommand(newReviewsCmd())
	rootCmd.AddCommand(newMetricsCmd())
	rootCmd.AddCommand(newSetModelCmd())
	rootCmd.AddCommand(newHealthCmd())
	rootCmd.AddCommand(newVersionCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// chatResult mirrors the API's chat response payload.
type chatResult struct {
	Response        string   `json:"response"`
	ModelUsed       string   `json:"model_used"`
	QueryTypes      []string `json:"query_types"`
	RoutingCategory string   `json:"routing_category"`
	Confidence      float64  `json:"confidence"`
	Analysis        struct {
		Sentiment struct {
			Positive int `json:"positive"`
			Negative int `json:"negative"`
			Neutral  int `json:"neutral"`
		} `json:"sentiment"`
		Pros   []string `json:"pros,omitempty"`
		Cons   []string `json:"cons,omitempty"`
		Rating *float64 `json:"rating,omitempty"`
	} `json:"analysis"`
	ResponseTimeMS float64 `json:"response_time_ms"`
}

// newAskCmd creates the ask subcommand.
func newAskCmd() *cobra.Command {
	var (
		carID      int64
		userID     string
		forceModel string
	)

	cmd := &cobra.Command{
		Use:   "ask [message]",
		Short: "Ask the assistant a question",
		Long: `Ask sends one message to the assistant and prints the routed response.

Use --car to anchor the question to a specific car in the inventory, and
--model to force the cloud or local backend for this query only.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
			defer cancel()

			body := map[string]interface{}{
				"message": strings.Join(args, " "),
			}
			if carID > 0 {
				body["car_id"] = carID
			}
			if userID != "" {
				body["user_id"] = userID
			}
			if forceModel != "" {
				body["force_model"] = forceModel
			}

			var result chatResult
			if err := client.postJSON(ctx, "/api/chat", body, &result); err != nil {
				return err
			}

			if outputJSON {
				return printJSON(result)
			}

			fmt.Println(result.Response)
			ui.Newline()
			ui.KeyValue("model", result.ModelUsed)
			ui.KeyValue("category", result.RoutingCategory)
			ui.KeyValue("types", strings.Join(result.QueryTypes, ", "))
			ui.KeyValue("confidence", fmt.Sprintf("%.2f", result.Confidence))
			ui.KeyValue("latency", fmt.Sprintf("%.0fms", result.ResponseTimeMS))
			if result.Analysis.Rating != nil {
				ui.KeyValue("rating", fmt.Sprintf("%.1f/5", *result.Analysis.Rating))
			}
			if len(result.Analysis.Pros) > 0 {
				ui.KeyValue("pros", strings.Join(result.Analysis.Pros, "; "))
			}
			if len(result.Analysis.Cons) > 0 {
				ui.KeyValue("cons", strings.Join(result.Analysis.Cons, "; "))
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&carID, "car", 0, "car ID to anchor the question to")
	cmd.Flags().StringVarP(&userID, "user", "u", "", "user ID for server-side conversation history")
	cmd.Flags().StringVarP(&forceModel, "model", "m", "", "force backend for this query (cloud or local)")
	return cmd
}

// carDTO mirrors the API's car payload.
type carDTO struct {
	ID           int64   `json:"id"`
	Manufacturer string  `json:"manufacturer"`
	Model        string  `json:"model"`
	Year         int     `json:"year"`
	Price        float64 `json:"price"`
	FuelType     string  `json:"fuel_type"`
	MPG          float64 `json:"mpg"`
	BodyType     string  `json:"body_type"`
}

// newCarsCmd creates the cars subcommand.
func newCarsCmd() *cobra.Command {
	var (
		query        string
		manufacturer string
		limit        int
	)

	cmd := &cobra.Command{
		Use:   "cars [carID]",
		Short: "List the car inventory, or show one car",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if len(args) == 1 {
				id, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid car ID %q", args[0])
				}

				var car carDTO
				if err := client.getJSON(ctx, fmt.Sprintf("/api/cars/%d", id), &car); err != nil {
					return err
				}
				if outputJSON {
					return printJSON(car)
				}

				ui.Section(fmt.Sprintf("%d %s %s", car.Year, car.Manufacturer, car.Model))
				ui.KeyValue("price", fmt.Sprintf("$%.0f", car.Price))
				ui.KeyValue("fuel", car.FuelType)
				ui.KeyValue("mpg", fmt.Sprintf("%.0f", car.MPG))
				ui.KeyValue("body", car.BodyType)
				return nil
			}

			path := "/api/cars?limit=" + strconv.Itoa(limit)
			if query != "" {
				path += "&query=" + query
			}
			if manufacturer != "" {
				path += "&manufacturer=" + manufacturer
			}

			var resp struct {
				Cars  []carDTO `json:"cars"`
				Count int      `json:"count"`
			}
			if err := client.getJSON(ctx, path, &resp); err != nil {
				return err
			}
			if outputJSON {
				return printJSON(resp)
			}

			rows := make([][]string, 0, len(resp.Cars))
			for _, car := range resp.Cars {
				rows = append(rows, []string{
					strconv.FormatInt(car.ID, 10),
					strconv.Itoa(car.Year),
					car.Manufacturer,
					car.Model,
					fmt.Sprintf("$%.0f", car.Price),
					car.FuelType,
				})
			}
			ui.Table([]string{"ID", "Year", "Make", "Model", "Price", "Fuel"}, rows)
			ui.Info("%d cars", resp.Count)
			return nil
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "free-text filter on manufacturer or model")
	cmd.Flags().StringVar(&manufacturer, "manufacturer", "", "exact manufacturer filter")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum cars to list")
	return cmd
}

// reviewDTO mirrors the API's review payload.
type reviewDTO struct {
	Title  string   `json:"review_title"`
	Text   string   `json:"review_text"`
	Rating float64  `json:"rating"`
	Author string   `json:"author"`
	Pros   []string `json:"pros,omitempty"`
	Cons   []string `json:"cons,omitempty"`
}

// newReviewsCmd creates the reviews subcommand.
func newReviewsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reviews",
		Short: "Show or generate car reviews",
	}

	listCmd := &cobra.Command{
		Use:   "list [carID]",
		Short: "List a car's reviews with summary stats",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid car ID %q", args[0])
			}

			var resp struct {
				Reviews []reviewDTO `json:"reviews"`
				Stats   struct {
					AverageRating float64 `json:"average_rating"`
					TotalReviews  int     `json:"total_reviews"`
					Sentiment     struct {
						Positive int `json:"positive"`
						Neutral  int `json:"neutral"`
						Negative int `json:"negative"`
					} `json:"sentiment"`
					CommonTopics []string `json:"common_topics"`
				} `json:"stats"`
			}
			if err := client.getJSON(ctx, fmt.Sprintf("/api/cars/%d/reviews", id), &resp); err != nil {
				return err
			}
			if outputJSON {
				return printJSON(resp)
			}

			for _, review := range resp.Reviews {
				ui.Section(fmt.Sprintf("%s (%.1f/5)", review.Title, review.Rating))
				fmt.Println(review.Text)
				if len(review.Pros) > 0 {
					ui.KeyValue("pros", strings.Join(review.Pros, "; "))
				}
				if len(review.Cons) > 0 {
					ui.KeyValue("cons", strings.Join(review.Cons, "; "))
				}
				ui.KeyValue("author", review.Author)
			}

			ui.Section("summary")
			ui.KeyValue("reviews", resp.Stats.TotalReviews)
			ui.KeyValue("average", fmt.Sprintf("%.1f/5", resp.Stats.AverageRating))
			ui.KeyValue("sentiment", fmt.Sprintf("%d positive / %d neutral / %d negative",
				resp.Stats.Sentiment.Positive, resp.Stats.Sentiment.Neutral, resp.Stats.Sentiment.Negative))
			if len(resp.Stats.CommonTopics) > 0 {
				ui.KeyValue("topics", strings.Join(resp.Stats.CommonTopics, ", "))
			}
			return nil
		},
	}

	generateCmd := &cobra.Command{
		Use:   "generate [carID]",
		Short: "Generate and store a new review for a car",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
			defer cancel()

			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid car ID %q", args[0])
			}

			var review reviewDTO
			if err := client.postJSON(ctx, "/api/reviews/generate", map[string]int64{"car_id": id}, &review); err != nil {
				return err
			}
			if outputJSON {
				return printJSON(review)
			}

			ui.Success("review generated")
			ui.Section(fmt.Sprintf("%s (%.1f/5)", review.Title, review.Rating))
			fmt.Println(review.Text)
			ui.KeyValue("author", review.Author)
			return nil
		},
	}

	cmd.AddCommand(listCmd)
	cmd.AddCommand(generateCmd)
	return cmd
}

// newMetricsCmd creates the metrics subcommand.
func newMetricsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "Show routing metrics and backend health",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			var resp struct {
				Metrics struct {
					TotalRequests     int64   `json:"total_requests"`
					CloudRequests     int64   `json:"cloud_requests"`
					LocalRequests     int64   `json:"local_requests"`
					RuleRequests      int64   `json:"rule_requests"`
					Fallbacks         int64   `json:"fallbacks"`
					Failures          int64   `json:"failures"`
					AvgResponseTimeMS float64 `json:"avg_response_time_ms"`
					ForcedModel       string  `json:"forced_model"`
					ActiveUsers       int     `json:"active_users"`
				} `json:"metrics"`
				Backends map[string]struct {
					Status       string  `json:"status"`
					Detail       string  `json:"detail"`
					Requests     int64   `json:"requests"`
					Errors       int64   `json:"errors"`
					AvgLatencyMS float64 `json:"avg_latency_ms"`
				} `json:"backends"`
			}
			if err := client.getJSON(ctx, "/api/chat/metrics", &resp); err != nil {
				return err
			}
			if outputJSON {
				return printJSON(resp)
			}

			m := resp.Metrics
			ui.Section("routing")
			ui.KeyValue("total", m.TotalRequests)
			ui.KeyValue("cloud", m.CloudRequests)
			ui.KeyValue("local", m.LocalRequests)
			ui.KeyValue("rule", m.RuleRequests)
			ui.KeyValue("fallbacks", m.Fallbacks)
			ui.KeyValue("failures", m.Failures)
			ui.KeyValue("avg latency", fmt.Sprintf("%.0fms", m.AvgResponseTimeMS))
			ui.KeyValue("active users", m.ActiveUsers)
			if m.ForcedModel != "" {
				ui.Warning("routing pinned to %s", m.ForcedModel)
			}

			names := make([]string, 0, len(resp.Backends))
			for name := range resp.Backends {
				names = append(names, name)
			}
			sort.Strings(names)

			rows := make([][]string, 0, len(names))
			for _, name := range names {
				b := resp.Backends[name]
				rows = append(rows, []string{
					name, b.Status,
					strconv.FormatInt(b.Requests, 10),
					strconv.FormatInt(b.Errors, 10),
					fmt.Sprintf("%.0fms", b.AvgLatencyMS),
				})
			}
			ui.Section("backends")
			ui.Table([]string{"Backend", "Status", "Requests", "Errors", "Avg Latency"}, rows)
			return nil
		},
	}
}

// newSetModelCmd creates the set-model subcommand.
func newSetModelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-model [cloud|local|auto]",
		Short: "Pin routing to one backend, or restore automatic routing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			name := args[0]
			if name == "auto" {
				name = ""
			}

			var resp map[string]string
			if err := client.postJSON(ctx, "/api/chat/set_model", map[string]string{"model_name": name}, &resp); err != nil {
				return err
			}
			if outputJSON {
				return printJSON(resp)
			}

			if resp["forced_model"] == "" {
				ui.Success("automatic routing restored")
			} else {
				ui.Success("routing pinned to %s", resp["forced_model"])
			}
			return nil
		},
	}
}

// newHealthCmd creates the health subcommand.
func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check API and database health",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			var status struct {
				Status  string `json:"status"`
				Service string `json:"service"`
			}
			if err := client.getJSON(ctx, "/health", &status); err != nil {
				return err
			}

			var db struct {
				Status        string `json:"status"`
				Driver        string `json:"driver"`
				UsingFallback bool   `json:"using_fallback"`
				CarCount      int    `json:"car_count"`
			}
			dbErr := client.getJSON(ctx, "/api/test-db", &db)

			if outputJSON {
				return printJSON(map[string]interface{}{"api": status, "database": db})
			}

			ui.Success("API %s (%s)", status.Status, status.Service)
			if dbErr != nil {
				ui.Error("database: %v", dbErr)
				return nil
			}
			ui.Success("database %s via %s (%d cars)", db.Status, db.Driver, db.CarCount)
			if db.UsingFallback {
				ui.Warning("running on the SQLite fallback store")
			}
			return nil
		},
	}
}

// newVersionCmd creates the version subcommand.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the CLI version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("chat-engine-cli %s\n", version)
		},
	}
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
