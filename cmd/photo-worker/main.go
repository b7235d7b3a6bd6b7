package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/storage"

	"github.com/aroundu/app/internal/services"
)

// Eventarc delivers CloudEvents; for GCS finalized events the body
// contains object info. Minimal fields we need: bucket, name, size.
type gcsFinalizeEvent struct {
	Bucket string `json:"bucket"`
	Name   string `json:"name"`
	Size   string `json:"size"`
}

// cloudEventEnvelope handles Eventarc structured content mode where the
// GCS payload is nested inside a "data" field.
type cloudEventEnvelope struct {
	Data gcsFinalizeEvent `json:"data"`
}

func main() {
	addr := getEnv("PORT", "8080")

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	http.HandleFunc("/events", handleFinalize)

	log.Printf("photo-worker listening on :%s", addr)
	log.Fatal(http.ListenAndServe(":"+addr, nil))
}

func handleFinalize(w http.ResponseWriter, r *http.Request) {
	// Only accept POSTs from Eventarc.
	if r.Method != http.MethodPost {
		log.Printf("[worker] rejected non-POST method=%s", r.Method)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	rawBody, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("[worker] failed to read request body: %v", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	// Binary content mode first, then the structured CloudEvent envelope.
	var ev gcsFinalizeEvent
	if err := json.Unmarshal(rawBody, &ev); err != nil {
		log.Printf("[worker] failed to decode event body: %v", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if ev.Bucket == "" || ev.Name == "" {
		var envelope cloudEventEnvelope
		if err := json.Unmarshal(rawBody, &envelope); err == nil && envelope.Data.Bucket != "" && envelope.Data.Name != "" {
			ev = envelope.Data
		}
	}

	// Only process pending profile photos.
	if ev.Bucket == "" || ev.Name == "" {
		log.Printf("[worker] skipping event: bucket or name is empty")
		w.WriteHeader(http.StatusOK)
		return
	}
	if !strings.HasPrefix(ev.Name, "pending/") {
		log.Printf("[worker] skipping non-pending object: name=%s", ev.Name)
		w.WriteHeader(http.StatusOK)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	gcsURI := fmt.Sprintf("gs://%s/%s", ev.Bucket, ev.Name)
	log.Printf("[worker] running SafeSearch on %s", gcsURI)

	ss, err := services.DetectSafeSearch(ctx, gcsURI)
	if err != nil {
		log.Printf("[worker] safesearch error bucket=%s name=%s err=%v", ev.Bucket, ev.Name, err)
		// Retry by returning 500; Eventarc will retry.
		http.Error(w, "safesearch failed", http.StatusInternalServerError)
		return
	}
	log.Printf("[worker] safesearch result for %s: adult=%s violence=%s racy=%s isUnsafe=%v",
		ev.Name, ss.Adult, ss.Violence, ss.Racy, ss.IsUnsafe())

	mongoURI := os.Getenv("MONGO_URI")
	mongoDB := getEnv("MONGO_DB", "aroundu")
	if mongoURI == "" {
		log.Printf("[worker] MONGO_URI env var is not set")
		http.Error(w, "MONGO_URI missing", http.StatusInternalServerError)
		return
	}

	userSvc, err := services.NewMongoUserService(ctx, mongoURI, mongoDB)
	if err != nil {
		log.Printf("[worker] mongo user service init failed: %v", err)
		http.Error(w, "mongo user init failed", http.StatusInternalServerError)
		return
	}
	defer userSvc.Close(ctx)

	flagSvc, err := services.NewMongoUserFlagService(ctx, mongoURI, mongoDB)
	if err != nil {
		log.Printf("[worker] mongo user_flags service init failed: %v", err)
		http.Error(w, "mongo user_flags init failed", http.StatusInternalServerError)
		return
	}
	defer flagSvc.Close(ctx)

	actions := &services.PhotoActions{Users: userSvc, Flags: flagSvc}
	pendingURL := objectURL(ev.Bucket, ev.Name)

	// Unsafe: delete object, clear references, record a strike.
	if ss.IsUnsafe() {
		log.Printf("[worker] photo UNSAFE, deleting object and clearing references: %s", ev.Name)

		if err := deleteGCSObject(ctx, ev.Bucket, ev.Name); err != nil {
			log.Printf("[worker] delete object failed bucket=%s name=%s err=%v", ev.Bucket, ev.Name, err)
			http.Error(w, "delete failed", http.StatusInternalServerError)
			return
		}
		if err := actions.Reject(ctx, pendingURL); err != nil {
			log.Printf("[worker] reject failed for url=%s: %v", pendingURL, err)
		}

		log.Printf("[worker] DONE (unsafe): name=%s", ev.Name)
		w.WriteHeader(http.StatusOK)
		return
	}

	// Safe: promote to the approved path (strip pending/).
	finalName := strings.TrimPrefix(ev.Name, "pending/")
	approvedURL := objectURL(ev.Bucket, finalName)

	if err := promoteObject(ctx, ev.Bucket, ev.Name, finalName); err != nil {
		log.Printf("[worker] promote failed bucket=%s from=%s to=%s err=%v", ev.Bucket, ev.Name, finalName, err)
		http.Error(w, "promote failed", http.StatusInternalServerError)
		return
	}

	size, _ := strconv.ParseInt(ev.Size, 10, 64)
	if err := actions.Approve(ctx, pendingURL, approvedURL, size); err != nil {
		log.Printf("[worker] approve failed for url=%s: %v", pendingURL, err)
	}

	log.Printf("[worker] DONE (safe): name=%s approvedURL=%s", ev.Name, approvedURL)
	w.WriteHeader(http.StatusOK)
}

func objectURL(bucket, name string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, name)
}

// promoteObject copies the screened object out of pending/ and removes
// the original.
func promoteObject(ctx context.Context, bucket, from, to string) error {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	src := client.Bucket(bucket).Object(from)
	dst := client.Bucket(bucket).Object(to)

	if _, err := dst.CopierFrom(src).Run(ctx); err != nil {
		return fmt.Errorf("copy: %w", err)
	}
	if err := src.Delete(ctx); err != nil {
		return fmt.Errorf("delete source: %w", err)
	}
	return nil
}

func deleteGCSObject(ctx context.Context, bucket, name string) error {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return err
	}
	defer client.Close()
	return client.Bucket(bucket).Object(name).Delete(ctx)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
