package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/piwi3910/PatchWall/internal/cutplan"
	"github.com/piwi3910/PatchWall/internal/engine"
	"github.com/piwi3910/PatchWall/internal/layout"
	"github.com/piwi3910/PatchWall/internal/model"
)

// InventoryLoader supplies the stored inventory used when a request brings
// no panels of its own.
type InventoryLoader interface {
	Load(ctx context.Context) (*model.Inventory, error)
}

// LayoutHandler serves layout runs over HTTP. Every request runs on its own
// session, so concurrent requests never share state.
type LayoutHandler struct {
	settings model.LayoutSettings
	cutPlan  cutplan.Settings
	store    InventoryLoader
	recorder layout.Recorder
	logger   *zap.Logger
}

// NewLayoutHandler constructs the HTTP handler adapter. store and recorder may be nil.
func NewLayoutHandler(settings model.LayoutSettings, cutPlan cutplan.Settings, store InventoryLoader, recorder layout.Recorder, logger *zap.Logger) *LayoutHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LayoutHandler{
		settings: settings,
		cutPlan:  cutPlan,
		store:    store,
		recorder: recorder,
		logger:   logger,
	}
}

// WallInput is the wall in a request.
type WallInput struct {
	Width  int `json:"width" binding:"required"`
	Height int `json:"height" binding:"required"`
}

// PanelInput is one panel in a request. Flags default to visible and, for
// own stock, forced.
type PanelInput struct {
	ID      string  `json:"id"`
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	Kind    string  `json:"kind"`
	Price   float64 `json:"price"`
	Label   string  `json:"label"`
	Link    string  `json:"link"`
	Visible *bool   `json:"visible"`
	Forced  *bool   `json:"forced"`
}

// LayoutRequest triggers one layout run.
type LayoutRequest struct {
	Wall       WallInput    `json:"wall" binding:"required"`
	Strategy   string       `json:"strategy"`
	Seed       int64        `json:"seed"`
	FillerRate *float64     `json:"filler_rate"`
	Panels     []PanelInput `json:"panels"`
	CutPlan    bool         `json:"cut_plan"`
}

// LayoutResponse carries the run result and the procurement matrix.
type LayoutResponse struct {
	Result        *layout.Result `json:"result"`
	Rows          []layout.Row   `json:"rows"`
	ForcedOmitted []model.Panel  `json:"forced_omitted"`
	CutPlan       *cutplan.Plan  `json:"cut_plan,omitempty"`
}

// ComparisonEntry summarises one strategy in a comparison.
type ComparisonEntry struct {
	Strategy     model.Strategy `json:"strategy"`
	Placed       []model.Panel  `json:"placed"`
	PlacedCount  int            `json:"placed_count"`
	OmittedCount int            `json:"omitted_count"`
	FillRatio    float64        `json:"fill_ratio"`
	TotalCost    float64        `json:"total_cost"`
	FillerCount  int            `json:"filler_count"`
	FillerArea   int            `json:"filler_area"`
}

// CompareResponse lists every strategy and names the best one by fill.
type CompareResponse struct {
	Seed       int64             `json:"seed"`
	Best       model.Strategy    `json:"best"`
	Strategies []ComparisonEntry `json:"strategies"`
}

// Strategies lists the available layout strategies.
func (h *LayoutHandler) Strategies(c *gin.Context) {
	type entry struct {
		Name       model.Strategy `json:"name"`
		Label      string         `json:"label"`
		Randomized bool           `json:"randomized"`
		Default    bool           `json:"default"`
	}
	var out []entry
	for _, s := range model.Strategies() {
		out = append(out, entry{Name: s, Label: s.Label(), Randomized: s.Randomized(), Default: s == h.settings.Strategy})
	}
	c.JSON(http.StatusOK, gin.H{"strategies": out})
}

// Layout runs the pipeline for the posted wall.
func (h *LayoutHandler) Layout(c *gin.Context) {
	var req LayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid layout payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	inv, settings, ok := h.prepare(c, &req)
	if !ok {
		return
	}

	session := layout.NewSession(inv, settings, h.logger, layout.WithRecorder(h.recorder))
	res, err := session.RunSeeded(model.Wall{Width: req.Wall.Width, Height: req.Wall.Height}, settings.Strategy, req.Seed)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := LayoutResponse{Result: res, Rows: res.Rows(), ForcedOmitted: res.ForcedOmitted()}
	if req.CutPlan {
		plan, err := cutplan.Build(res.Fillers, h.cutPlan)
		if err != nil {
			h.respondError(c, err)
			return
		}
		resp.CutPlan = &plan
	}
	c.JSON(http.StatusOK, resp)
}

// Compare runs every strategy on the posted wall.
func (h *LayoutHandler) Compare(c *gin.Context) {
	var req LayoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid compare payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	inv, settings, ok := h.prepare(c, &req)
	if !ok {
		return
	}

	seed := engine.SeedOrNow(req.Seed)
	results, err := engine.CompareStrategies(model.Wall{Width: req.Wall.Width, Height: req.Wall.Height}, inv.Visible(), seed, settings.FillerRate)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := CompareResponse{Seed: seed}
	if best, ok := engine.BestByFill(results); ok {
		resp.Best = best.Strategy
	}
	for _, r := range results {
		resp.Strategies = append(resp.Strategies, ComparisonEntry{
			Strategy:     r.Strategy,
			Placed:       r.Result.Placed,
			PlacedCount:  r.PlacedCount,
			OmittedCount: r.OmittedCount,
			FillRatio:    r.FillRatio,
			TotalCost:    r.TotalCost,
			FillerCount:  r.FillerCount,
			FillerArea:   r.FillerArea,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// Inventory returns the stored inventory in procurement matrix order.
func (h *LayoutHandler) Inventory(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no inventory store configured"})
		return
	}
	inv, err := h.store.Load(c.Request.Context())
	if err != nil {
		h.logger.Error("failed loading inventory", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load inventory"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"panels": inv.All(), "visible": len(inv.Visible()), "total": inv.Len()})
}

// prepare resolves the inventory and settings for a request. It writes the
// error response itself and reports false on failure.
func (h *LayoutHandler) prepare(c *gin.Context, req *LayoutRequest) (*model.Inventory, model.LayoutSettings, bool) {
	settings := h.settings
	if req.Strategy != "" {
		strategy, ok := model.ParseStrategy(req.Strategy)
		if !ok {
			h.respondError(c, model.NewConfigurationError("strategy", req.Strategy, "unknown layout strategy"))
			return nil, settings, false
		}
		settings.Strategy = strategy
	}
	if req.FillerRate != nil {
		if *req.FillerRate < 0 {
			h.respondError(c, model.NewConfigurationError("filler_rate", fmt.Sprint(*req.FillerRate), "must not be negative"))
			return nil, settings, false
		}
		settings.FillerRate = *req.FillerRate
	}

	if len(req.Panels) > 0 {
		inv, err := inventoryFromInput(req.Panels)
		if err != nil {
			h.respondError(c, err)
			return nil, settings, false
		}
		return inv, settings, true
	}

	if h.store == nil {
		return model.NewInventory(), settings, true
	}
	inv, err := h.store.Load(c.Request.Context())
	if err != nil {
		h.logger.Error("failed loading inventory", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load inventory"})
		return nil, settings, false
	}
	if err := validateInventory(inv); err != nil {
		h.respondError(c, err)
		return nil, settings, false
	}
	return inv, settings, true
}

// validateInventory checks every panel, hidden ones included, for size
// limits and unique IDs.
func validateInventory(inv *model.Inventory) error {
	seen := make(map[string]bool, inv.Len())
	for _, p := range inv.All() {
		if err := p.Validate(); err != nil {
			return err
		}
		if seen[p.ID] {
			return model.NewConfigurationError("panel "+p.ID, p.Dimensions(), "duplicate panel id")
		}
		seen[p.ID] = true
	}
	return nil
}

// inventoryFromInput builds an inventory from request panels. Own stock
// goes to the user-added collection, everything else is discovered.
func inventoryFromInput(panels []PanelInput) (*model.Inventory, error) {
	inv := model.NewInventory()
	var discovered []model.Panel
	for _, in := range panels {
		kind := model.KindSourcedUsed
		if in.Kind != "" {
			parsed, ok := model.ParsePanelKind(in.Kind)
			if !ok || parsed == model.KindFiller {
				return nil, model.NewConfigurationError("panel kind", in.Kind, "must be used, new or stock")
			}
			kind = parsed
		}

		p := model.NewPanel(kind, in.Width, in.Height, in.Price, model.Provenance{Label: in.Label, Link: in.Link})
		if in.ID != "" {
			p.ID = in.ID
		}
		if in.Visible != nil {
			p.Visible = *in.Visible
		}
		if in.Forced != nil {
			p.Forced = *in.Forced
		}

		if kind == model.KindUserStock {
			inv.AddUserStock(p)
		} else {
			discovered = append(discovered, p)
		}
	}
	inv.ReplaceDiscovered(discovered)
	if err := validateInventory(inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (h *LayoutHandler) respondError(c *gin.Context, err error) {
	var cfgErr *model.ConfigurationError
	if errors.As(err, &cfgErr) {
		h.logger.Warn("rejected layout request", zap.Error(err))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "field": cfgErr.Field})
		return
	}
	h.logger.Error("layout request failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "layout failed"})
}
