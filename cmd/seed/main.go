package main

import (
	"context"
	"crypto/md5"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bi-admin/internal/models"
	"bi-admin/internal/repository"
	"bi-admin/internal/service"
	"bi-admin/pkg/cache"
	"bi-admin/pkg/config"
	"bi-admin/pkg/logger"
	"bi-admin/pkg/postgres"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

func main() {
	seedDir := flag.String("dir", filepath.Join("cmd", "seed", "data"), "directory with *.md contexts and questions.yaml")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logger); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	// Connect to database
	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	contextRepo := repository.NewKnowledgeContextRepository(db, appLogger)
	knowledgeService := service.NewKnowledgeService(contextRepo, cache.Noop{}, appLogger)
	triageService := service.NewTriageService(service.QuestionScope(repository.NewQuestionRepository(db, appLogger)), cfg.Triage, appLogger)

	appLogger.Info("Starting database seeding...")

	cacheFile := filepath.Join(*seedDir, ".seed_cache.json")
	if err := seedContexts(ctx, *seedDir, cacheFile, contextRepo, knowledgeService, appLogger); err != nil {
		appLogger.Fatal("Failed to seed knowledge contexts", zap.Error(err))
	}

	feedbackRepo := repository.NewFeedbackRepository(db, appLogger)
	if err := seedQuestions(ctx, filepath.Join(*seedDir, "questions.yaml"), triageService, feedbackRepo, appLogger); err != nil {
		appLogger.Fatal("Failed to seed questions", zap.Error(err))
	}

	appLogger.Info("Database seeding completed successfully!")
}

// ProcessedFile represents a parsed context file in cache
type ProcessedFile struct {
	FilePath    string    `json:"file_path"`
	FileHash    string    `json:"file_hash"`
	ContextID   string    `json:"context_id"`
	ProcessedAt time.Time `json:"processed_at"`
}

// CacheData stores information about processed files
type CacheData struct {
	ProcessedFiles map[string]ProcessedFile `json:"processed_files"` // key: file path
}

// loadCache loads the cache of processed files
func loadCache(cacheFile string) (*CacheData, error) {
	cache := &CacheData{
		ProcessedFiles: make(map[string]ProcessedFile),
	}

	data, err := os.ReadFile(cacheFile)
	if os.IsNotExist(err) {
		return cache, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	if len(data) == 0 {
		return cache, nil
	}

	if err := sonic.Unmarshal(data, cache); err != nil {
		return nil, fmt.Errorf("failed to parse cache file: %w", err)
	}

	return cache, nil
}

// saveCache saves the cache of processed files
func saveCache(cacheFile string, cache *CacheData) error {
	data, err := sonic.ConfigStd.MarshalIndent(cache, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cache: %w", err)
	}

	if err := os.WriteFile(cacheFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}

	return nil
}

// calculateFileHash calculates MD5 hash of a file
func calculateFileHash(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	hash := md5.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", fmt.Errorf("failed to calculate hash: %w", err)
	}

	return fmt.Sprintf("%x", hash.Sum(nil)), nil
}

// seedContexts parses every markdown file of seedDir into the context named
// after the file. Unchanged files are skipped.
func seedContexts(
	ctx context.Context,
	seedDir string,
	cacheFile string,
	repo *repository.KnowledgeContextRepository,
	knowledgeService *service.KnowledgeService,
	logger *zap.Logger,
) error {
	cache, err := loadCache(cacheFile)
	if err != nil {
		logger.Warn("Failed to load cache, will process all files", zap.Error(err))
		cache = &CacheData{ProcessedFiles: make(map[string]ProcessedFile)}
	}

	files, err := filepath.Glob(filepath.Join(seedDir, "*.md"))
	if err != nil {
		return err
	}

	for _, path := range files {
		fileHash, err := calculateFileHash(path)
		if err != nil {
			logger.Warn("Failed to calculate file hash, will process anyway", zap.String("path", path), zap.Error(err))
		}

		if cached, exists := cache.ProcessedFiles[path]; exists && cached.FileHash == fileHash {
			logger.Info("Context file unchanged, skipping",
				zap.String("path", path),
				zap.Time("processed_at", cached.ProcessedAt),
			)
			continue
		}

		content, err := os.ReadFile(path)
		if err != nil {
			logger.Error("Failed to read context file", zap.String("path", path), zap.Error(err))
			continue
		}

		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		contextID, err := repo.EnsureByName(ctx, name)
		if err != nil {
			logger.Error("Failed to create knowledge context", zap.String("name", name), zap.Error(err))
			continue
		}

		result, err := knowledgeService.ApplyParse(ctx, contextID, string(content))
		if err != nil {
			logger.Error("Failed to parse context file", zap.String("path", path), zap.Error(err))
			continue
		}

		logger.Info("Seeded knowledge context",
			zap.String("name", name),
			zap.String("context_id", contextID.String()),
			zap.Int("medidas", result.Stats.Medidas),
			zap.Int("tabelas", result.Stats.Tabelas),
		)

		cache.ProcessedFiles[path] = ProcessedFile{
			FilePath:    path,
			FileHash:    fileHash,
			ContextID:   contextID.String(),
			ProcessedAt: time.Now(),
		}
	}

	if err := saveCache(cacheFile, cache); err != nil {
		logger.Warn("Failed to save cache", zap.Error(err))
	} else {
		logger.Info("Cache saved", zap.Int("processed_files", len(cache.ProcessedFiles)))
	}

	return nil
}

type questionSeed struct {
	Tenant    string `yaml:"tenant"`
	Questions []struct {
		Text     string   `yaml:"text"`
		Priority *float64 `yaml:"priority"`
		Asks     int      `yaml:"asks"`
	} `yaml:"questions"`
	Logs []struct {
		Question string `yaml:"question"`
		Answer   string `yaml:"answer"`
	} `yaml:"logs"`
}

// seedQuestions fills triage queues and query logs from a YAML list of tenants.
func seedQuestions(
	ctx context.Context,
	path string,
	triageService *service.TriageService,
	feedbackRepo *repository.FeedbackRepository,
	logger *zap.Logger,
) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		logger.Info("No question seed file, skipping", zap.String("path", path))
		return nil
	}
	if err != nil {
		return err
	}

	var seeds []questionSeed
	if err := yaml.Unmarshal(data, &seeds); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	for _, seed := range seeds {
		tenantID, err := uuid.Parse(seed.Tenant)
		if err != nil {
			logger.Warn("Invalid tenant in question seed", zap.String("tenant", seed.Tenant))
			continue
		}
		for _, q := range seed.Questions {
			for i := 0; i < max(q.Asks, 1); i++ {
				if _, err := triageService.Track(ctx, tenantID, q.Text, q.Priority); err != nil {
					logger.Error("Failed to track question", zap.String("question", q.Text), zap.Error(err))
					break
				}
			}
		}
		for _, l := range seed.Logs {
			entry := &models.QueryLog{CompanyGroupID: tenantID, Question: l.Question, Answer: l.Answer}
			if err := feedbackRepo.LogQuery(ctx, entry); err != nil {
				logger.Error("Failed to log query", zap.String("question", l.Question), zap.Error(err))
				continue
			}
			logger.Info("Seeded query log", zap.String("query_id", entry.ID.String()))
		}
		logger.Info("Seeded questions",
			zap.String("tenant", seed.Tenant),
			zap.Int("questions", len(seed.Questions)),
			zap.Int("logs", len(seed.Logs)),
		)
	}
	return nil
}
