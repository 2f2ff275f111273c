package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/scavin/discourse-bilibili-onebox/internal/linkid"
	"github.com/scavin/discourse-bilibili-onebox/internal/revision"
	"go.uber.org/zap"
)

// RevisionApplier runs the pre-commit transforms over a revision.
type RevisionApplier interface {
	Apply(ctx context.Context, rev revision.Revision) revision.Revision
}

// HTMLRewriter replaces eligible anchors of rendered HTML.
type HTMLRewriter interface {
	RewriteHTML(ctx context.Context, html string) (string, int, error)
}

// LinkRenderer resolves and renders single links.
type LinkRenderer interface {
	Render(ctx context.Context, rawURL string) (string, bool)
	Lookup(ctx context.Context, rawURL string) (linkid.Link, bool)
}

// OneboxHandler exposes the rewriting pipeline to the host application.
type OneboxHandler struct {
	revisions RevisionApplier
	tree      HTMLRewriter
	renderer  LinkRenderer
	matcher   *linkid.Matcher
	logger    *zap.Logger
}

// NewOneboxHandler creates a new onebox handler.
func NewOneboxHandler(
	revisions RevisionApplier,
	tree HTMLRewriter,
	renderer LinkRenderer,
	matcher *linkid.Matcher,
	logger *zap.Logger,
) *OneboxHandler {
	return &OneboxHandler{
		revisions: revisions,
		tree:      tree,
		renderer:  renderer,
		matcher:   matcher,
		logger:    logger,
	}
}

var errUnknownAction = errors.New("action must be 'create' or 'edit'")

func parseAction(s string) (revision.Action, error) {
	switch revision.Action(s) {
	case revision.ActionCreate, revision.ActionEdit:
		return revision.Action(s), nil
	case "":
		return revision.ActionCreate, nil
	default:
		return "", errUnknownAction
	}
}

func (h *OneboxHandler) ApplyRevision(
	ctx context.Context, req *ApplyRevisionRequest,
) (*ApplyRevisionResponse, error) {
	action, err := parseAction(req.Body.Action)
	if err != nil {
		return nil, huma.Error400BadRequest(err.Error())
	}

	rev := h.revisions.Apply(ctx, revision.Revision{
		PostID: req.Body.PostID,
		Action: action,
		Raw:    req.Body.Raw,
	})

	resp := &ApplyRevisionResponse{}
	resp.Body.PostID = rev.PostID
	resp.Body.Raw = rev.Raw
	resp.Body.Changed = rev.Raw != req.Body.Raw

	if resp.Body.Changed {
		h.logger.Info("revision rewritten",
			zap.String("requestId", RequestMetaFromContext(ctx).RequestID),
			zap.String("postId", rev.PostID),
			zap.String("action", string(action)),
		)
	}

	return resp, nil
}

func (h *OneboxHandler) Cook(ctx context.Context, req *CookRequest) (*CookResponse, error) {
	out, replaced, err := h.tree.RewriteHTML(ctx, req.Body.HTML)
	if err != nil {
		h.logger.Warn("failed to rewrite html",
			zap.String("requestId", RequestMetaFromContext(ctx).RequestID),
			zap.Error(err),
		)

		// Rendering never fails because of embeds.
		out, replaced = req.Body.HTML, 0
	}

	resp := &CookResponse{}
	resp.Body.HTML = out
	resp.Body.Replaced = replaced

	return resp, nil
}

func (h *OneboxHandler) Onebox(ctx context.Context, req *LinkRequest) (*OneboxResponse, error) {
	fragment, ok := h.renderer.Render(ctx, req.URL)
	if !ok {
		return nil, huma.Error404NotFound("no embed for url")
	}

	resp := &OneboxResponse{}
	resp.Body.HTML = fragment

	return resp, nil
}

func (h *OneboxHandler) Resolve(ctx context.Context, req *LinkRequest) (*ResolveResponse, error) {
	link, ok := h.renderer.Lookup(ctx, req.URL)
	if !ok {
		return nil, huma.Error404NotFound("link not resolved")
	}

	resp := &ResolveResponse{}
	resp.Body.Kind = string(link.Kind)
	resp.Body.ID = link.ID
	resp.Body.CanonicalURL = h.matcher.CanonicalURL(link)

	return resp, nil
}

func (h *OneboxHandler) Matchers(_ context.Context, _ *struct{}) (*MatchersResponse, error) {
	hosts := h.matcher.Hosts()

	resp := &MatchersResponse{}
	resp.Body.InlinePattern = h.matcher.InlinePattern().String()
	resp.Body.ShortDomain = hosts.ShortDomain
	resp.Body.VideoDomain = hosts.VideoDomain
	resp.Body.LiveHost = hosts.LiveHost
	resp.Body.MarkerClass = hosts.MarkerClass

	return resp, nil
}
