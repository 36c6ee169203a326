package api

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/rawblock/confidential-verifier/internal/auditstore"
	"github.com/rawblock/confidential-verifier/internal/checktask"
	"github.com/rawblock/confidential-verifier/internal/curve"
	"github.com/rawblock/confidential-verifier/internal/feecalc"
	"github.com/rawblock/confidential-verifier/internal/txid"
	"github.com/rawblock/confidential-verifier/internal/verifier"
	"github.com/rawblock/confidential-verifier/pkg/confidential"
)

// APIHandler wires the HTTP control surface to the consensus-critical
// components: the curve context, the two proof caches, the audit store and
// the websocket broadcast hub.
type APIHandler struct {
	ctx    *curve.Context
	caches verifier.Caches
	store  *auditstore.Store
	wsHub  *Hub
}

// SetupRouter builds the gin engine exposing verify_amounts and its
// collaborators over HTTP, adapted from the teacher's SetupRouter shape
// (CORS middleware, public/protected route groups).
func SetupRouter(ctx *curve.Context, caches verifier.Caches, store *auditstore.Store, wsHub *Hub) *gin.Engine {
	r := gin.Default()

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if allowedOrigins == "" || allowedOrigins == "*" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		} else {
			for _, allowed := range strings.Split(allowedOrigins, ",") {
				if strings.TrimSpace(allowed) == origin {
					c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
					break
				}
			}
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, Accept, Origin, Cache-Control")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	handler := &APIHandler{ctx: ctx, caches: caches, store: store, wsHub: wsHub}

	pub := r.Group("/api/v1")
	{
		pub.GET("/health", handler.handleHealth)
		pub.GET("/stream", wsHub.Subscribe)
	}

	protected := r.Group("/api/v1")
	protected.Use(AuthMiddleware())
	protected.Use(NewRateLimiter(60, 10).Middleware())
	{
		protected.POST("/verify", handler.handleVerify)
		protected.GET("/fee-map", handler.handleFeeMap)
		protected.GET("/coinbase-check", handler.handleCoinbaseCheck)
		protected.GET("/vsize", handler.handleVsize)
	}

	return r
}

func (h *APIHandler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "operational",
		"service":    "confidential-verifier",
		"auditStore": h.store != nil,
		"rangeCacheEntries": func() int {
			if h.caches.Range == nil {
				return 0
			}
			return h.caches.Range.Len()
		}(),
		"surjectionCacheEntries": func() int {
			if h.caches.Surjection == nil {
				return 0
			}
			return h.caches.Surjection.Len()
		}(),
	})
}

func decodeVerifyRequest(req verifyRequest) ([]confidential.TxOut, confidential.Transaction, error) {
	prevouts := make([]confidential.TxOut, len(req.Prevouts))
	for i, p := range req.Prevouts {
		out, err := decodeTxOut(p)
		if err != nil {
			return nil, confidential.Transaction{}, err
		}
		prevouts[i] = out
	}
	tx, err := decodeTransaction(req.Tx)
	if err != nil {
		return nil, confidential.Transaction{}, err
	}
	return prevouts, tx, nil
}

// handleVerify decodes a transaction and runs verify_amounts. With
// defer=false (the default) it runs every check inline and returns the
// final verdict synchronously. With defer=true, it enqueues the deferred
// checks, responds immediately with the batch id, and drains the queue on
// a background goroutine, broadcasting the settled outcome over the
// websocket hub and persisting it to the audit store (spec §5 — deferred
// checks are run later by the caller; the HTTP layer plays that caller's
// role here).
func (h *APIHandler) handleVerify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	prevouts, tx, err := decodeVerifyRequest(req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction", "details": err.Error()})
		return
	}

	wtxidBytes := txid.WitnessTxID(tx.Serialized)
	wtxid := hex.EncodeToString(wtxidBytes[:])

	if !req.Defer {
		accepted, err := verifier.VerifyAmounts(h.ctx, h.caches, prevouts, tx, nil, req.StoreResult)
		h.persist(wtxid, accepted, err)
		if err != nil {
			c.JSON(http.StatusOK, gin.H{"accepted": false, "reason": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"accepted": accepted})
		return
	}

	queue := checktask.NewQueue()
	accepted, err := verifier.VerifyAmounts(h.ctx, h.caches, prevouts, tx, queue, req.StoreResult)
	if err != nil {
		h.persist(wtxid, false, err)
		c.JSON(http.StatusOK, gin.H{"accepted": false, "reason": err.Error(), "batchId": queue.BatchID.String()})
		return
	}

	batchID := queue.BatchID.String()
	go h.drainAndBroadcast(wtxid, queue)

	c.JSON(http.StatusAccepted, gin.H{
		"accepted":   accepted,
		"deferred":   true,
		"batchId":    batchID,
		"queueDepth": queue.Len(),
	})
}

// drainAndBroadcast runs a deferred check queue to completion, persists the
// settled outcome, and broadcasts it to every connected auditor.
func (h *APIHandler) drainAndBroadcast(wtxid string, queue *checktask.Queue) {
	err := queue.DrainConcurrent()
	h.persist(wtxid, err == nil, err)

	payload := gin.H{
		"type":     "verify_outcome",
		"txid":     wtxid,
		"batchId":  queue.BatchID.String(),
		"accepted": err == nil,
	}
	if err != nil {
		payload["reason"] = err.Error()
	}
	b, jerr := json.Marshal(payload)
	if jerr != nil {
		log.Printf("verify outcome broadcast: marshal failed: %v", jerr)
		return
	}
	h.wsHub.Broadcast(b)
}

func (h *APIHandler) persist(wtxid string, accepted bool, verifyErr error) {
	if h.store == nil {
		return
	}
	rejectedKind := ""
	if se, ok := verifyErr.(*checktask.ScriptError); ok {
		rejectedKind = se.Kind.String()
	}
	outcome := auditstore.Outcome{
		TxID:         wtxid,
		Accepted:     accepted,
		RejectedKind: rejectedKind,
		CheckedAt:    time.Now(),
	}
	if err := h.store.SaveOutcome(context.Background(), outcome); err != nil {
		log.Printf("audit store: failed to save outcome for %s: %v", wtxid, err)
	}
}

// handleFeeMap returns the per-asset explicit fee total for a transaction.
func (h *APIHandler) handleFeeMap(c *gin.Context) {
	var req struct {
		Tx transactionDTO `json:"tx"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	tx, err := decodeTransaction(req.Tx)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction", "details": err.Error()})
		return
	}

	feeMap := feecalc.GetFeeMap(tx)
	valid := feecalc.HasValidFee(tx)

	out := make(map[string]int64, len(feeMap))
	for asset, amount := range feeMap {
		out[hexAssetID(asset)] = amount
	}

	c.JSON(http.StatusOK, gin.H{"feeMap": out, "validFee": valid})
}

// handleCoinbaseCheck validates a coinbase transaction against a caller-
// supplied fee map.
func (h *APIHandler) handleCoinbaseCheck(c *gin.Context) {
	var req struct {
		Tx  transactionDTO   `json:"tx"`
		Fee map[string]int64 `json:"feeMap"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	tx, err := decodeTransaction(req.Tx)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction", "details": err.Error()})
		return
	}

	fees := make(feecalc.FeeMap, len(req.Fee))
	for assetHex, amount := range req.Fee {
		id, err := parseAssetID(assetHex)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid fee map asset id", "details": err.Error()})
			return
		}
		fees[id] = amount
	}

	valid, err := feecalc.VerifyCoinbaseAmount(tx, fees)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"valid": false, "reason": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": valid})
}

// handleVsize returns the discounted virtual size for a transaction.
func (h *APIHandler) handleVsize(c *gin.Context) {
	var req struct {
		Tx transactionDTO `json:"tx"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	tx, err := decodeTransaction(req.Tx)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transaction", "details": err.Error()})
		return
	}

	vsize, err := feecalc.DiscountedVirtualSize(tx)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"vsize": vsize})
}

func hexAssetID(id confidential.AssetID) string {
	return hex.EncodeToString(id[:])
}

func parseAssetID(s string) (confidential.AssetID, error) {
	var out confidential.AssetID
	b, err := hex.DecodeString(s)
	if err != nil {
		return out, fmt.Errorf("invalid hex: %w", err)
	}
	if len(b) != 32 {
		return out, fmt.Errorf("expected 32 bytes, got %d", len(b))
	}
	copy(out[:], b)
	return out, nil
}
