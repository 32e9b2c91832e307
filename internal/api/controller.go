package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/powchain/internal/blockchain"
	"github.com/yourusername/powchain/pkg/types"
)

// Controller wires chain operations to HTTP handlers. Handlers serialize
// access to the chain through the controller's lock; the chain itself does
// no locking.
type Controller struct {
	chain *blockchain.Blockchain
	mu    sync.RWMutex
}

// NewController creates a controller serving the given chain
func NewController(chain *blockchain.Blockchain) *Controller {
	return &Controller{chain: chain}
}

// NewRouter builds the HTTP route table
func (ctl *Controller) NewRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if logrus.GetLevel() >= logrus.DebugLevel {
		router.Use(gin.Logger())
	}
	router.Use(cors)

	router.GET("/ping", ctl.Ping)
	router.GET("/status", ctl.Status)
	router.GET("/chain", ctl.Chain)
	router.GET("/blocks/:index", ctl.Block)
	router.GET("/fingerprints/:fingerprint", ctl.BlockByFingerprint)
	router.POST("/blocks", ctl.AddBlock)
	router.POST("/validate", ctl.Validate)

	return router
}

func cors(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	c.Header("Access-Control-Allow-Headers", "Content-Type")
	if c.Request.Method == http.MethodOptions {
		c.AbortWithStatus(http.StatusNoContent)
		return
	}
	c.Next()
}

// Response writes the uniform envelope all endpoints share
func Response(c *gin.Context, status int, err error, data any) {
	var errStr string
	if err != nil {
		errStr = err.Error()
	}
	c.JSON(status, gin.H{
		"err":  errStr,
		"data": data,
	})
}

// BlockView is the JSON shape of a block served over the API
type BlockView struct {
	Index           uint64 `json:"index"`
	Timestamp       int64  `json:"timestamp"`
	Payload         any    `json:"payload"`
	PrevFingerprint string `json:"prev_fingerprint"`
	Nonce           uint64 `json:"nonce"`
	Fingerprint     string `json:"fingerprint"`
}

func newBlockView(block *types.Block) BlockView {
	return BlockView{
		Index:           block.Index,
		Timestamp:       block.Timestamp,
		Payload:         block.Payload,
		PrevFingerprint: block.PrevFingerprint,
		Nonce:           block.Nonce,
		Fingerprint:     block.Fingerprint,
	}
}

type statusView struct {
	Height     int    `json:"height"`
	Difficulty int    `json:"difficulty"`
	Tip        string `json:"tip"`
}

type validateView struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

type addBlockRequest struct {
	Payload json.RawMessage `json:"payload" binding:"required"`
}

// Ping answers liveness probes
func (ctl *Controller) Ping(c *gin.Context) {
	Response(c, http.StatusOK, nil, "pong")
}

// Status reports the chain height, difficulty and tip fingerprint
func (ctl *Controller) Status(c *gin.Context) {
	ctl.mu.RLock()
	defer ctl.mu.RUnlock()

	Response(c, http.StatusOK, nil, statusView{
		Height:     ctl.chain.Height(),
		Difficulty: ctl.chain.Difficulty,
		Tip:        ctl.chain.GetLatestBlock().Fingerprint,
	})
}

// Chain returns every block in chain order
func (ctl *Controller) Chain(c *gin.Context) {
	ctl.mu.RLock()
	defer ctl.mu.RUnlock()

	views := make([]BlockView, 0, len(ctl.chain.Blocks))
	for _, block := range ctl.chain.Blocks {
		views = append(views, newBlockView(block))
	}

	Response(c, http.StatusOK, nil, views)
}

// Block returns a block by index; "latest" addresses the tip
func (ctl *Controller) Block(c *gin.Context) {
	ctl.mu.RLock()
	defer ctl.mu.RUnlock()

	param := c.Param("index")
	if param == "latest" {
		Response(c, http.StatusOK, nil, newBlockView(ctl.chain.GetLatestBlock()))
		return
	}

	index, err := strconv.Atoi(param)
	if err != nil {
		Response(c, http.StatusBadRequest, fmt.Errorf("invalid block index %q", param), nil)
		return
	}

	block, err := ctl.chain.GetBlock(index)
	if err != nil {
		Response(c, http.StatusNotFound, err, nil)
		return
	}

	Response(c, http.StatusOK, nil, newBlockView(block))
}

// BlockByFingerprint returns the block carrying the given fingerprint
func (ctl *Controller) BlockByFingerprint(c *gin.Context) {
	ctl.mu.RLock()
	defer ctl.mu.RUnlock()

	block, err := ctl.chain.GetBlockByFingerprint(c.Param("fingerprint"))
	if err != nil {
		Response(c, http.StatusNotFound, err, nil)
		return
	}

	Response(c, http.StatusOK, nil, newBlockView(block))
}

// AddBlock mines a new block carrying the posted payload
func (ctl *Controller) AddBlock(c *gin.Context) {
	var req addBlockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Response(c, http.StatusBadRequest, fmt.Errorf("invalid request body: %v", err), nil)
		return
	}

	ctl.mu.Lock()
	defer ctl.mu.Unlock()

	block, err := ctl.chain.AddBlock(req.Payload)
	if err != nil {
		Response(c, http.StatusInternalServerError, err, nil)
		return
	}

	Response(c, http.StatusCreated, nil, newBlockView(block))
}

// Validate audits the whole chain and reports the verdict
func (ctl *Controller) Validate(c *gin.Context) {
	ctl.mu.RLock()
	defer ctl.mu.RUnlock()

	view := validateView{Valid: true}
	if err := ctl.chain.ValidateChain(); err != nil {
		view.Valid = false
		view.Error = err.Error()
	}

	Response(c, http.StatusOK, nil, view)
}
