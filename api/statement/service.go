package statement

import (
	"context"
	"log"
	"net/http"
	"os"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"

	"CommissionFlow/api/auth"
	middlewares "CommissionFlow/api/middlewares"
	"CommissionFlow/internal/serviceiface"
)

const defaultStatementPort = "7143"

type StatementService struct {
	config map[string]interface{}
	pool   *pgxpool.Pool
}

func NewStatementService(cfg map[string]interface{}, pool *pgxpool.Pool) serviceiface.Service {
	return &StatementService{config: cfg, pool: pool}
}

func (s *StatementService) Name() string {
	return "statement"
}

func (s *StatementService) Start() error {
	go StartStatementService(s.config, s.pool)
	return nil
}

func (s *StatementService) Stop() error {
	return nil
}

// StartStatementService wires the store, the S3 client and the automation
// client, and serves the statement routes. Webhook routes sit behind the
// shared-secret check; UI-facing routes behind session validation.
func StartStatementService(cfg map[string]interface{}, pool *pgxpool.Pool) {
	store := NewPostgresDocumentStore(pool)
	automation := NewAutomationClientFromEnv()

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		log.Fatalf("Statement Service: AWS config: %v", err)
	}
	s3c := s3.NewFromConfig(awsCfg)
	bucket := os.Getenv("UPLOAD_S3_BUCKET")

	port := defaultStatementPort
	if cfg != nil {
		if p, ok := cfg["port"].(string); ok && p != "" {
			port = p
		}
	}

	sessionOK := func(userID string) bool {
		for _, s := range auth.GetActiveSessions() {
			if s.UserID == userID {
				return true
			}
		}
		return false
	}
	router := NewStatementRouter(store, automation, s3c, bucket, os.Getenv("WEBHOOK_SECRET"), sessionOK)

	log.Println("Statement Service started on :" + port)
	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatalf("Statement Service failed: %v", err)
	}
}

// NewStatementRouter builds the route table. Split out from the server start
// so the full HTTP surface is exercisable in tests.
func NewStatementRouter(store DocumentStore, automation *AutomationClient, s3c ObjectPutter, bucket, webhookSecret string, sessionOK func(string) bool) *mux.Router {
	router := mux.NewRouter()

	hooks := router.PathPrefix("/statement/webhook").Subrouter()
	hooks.Use(middlewares.WebhookSecretMiddleware(webhookSecret))
	hooks.HandleFunc("/extraction", ExtractionWebhook(store)).Methods("POST")
	hooks.HandleFunc("/submission", BulkCompletionWebhook(store)).Methods("POST")
	hooks.HandleFunc("/correction", CorrectionWebhook(store)).Methods("POST")

	ui := router.PathPrefix("/statement").Subrouter()
	ui.Use(middlewares.SessionMiddleware(sessionOK))
	ui.HandleFunc("/upload", UploadStatement(store, s3c, bucket)).Methods("POST")
	ui.HandleFunc("/list", ListDocuments(store)).Methods("GET")
	ui.HandleFunc("/{id:[0-9]+}", GetDocument(store)).Methods("GET")
	ui.HandleFunc("/{id:[0-9]+}/submit", SubmitStatement(store, automation)).Methods("POST")
	ui.HandleFunc("/{id:[0-9]+}/corrections", ResubmitCorrections(store, automation)).Methods("POST")
	ui.HandleFunc("/{id:[0-9]+}/failed/export", ExportFailedTransactions(store)).Methods("GET")

	return router
}
