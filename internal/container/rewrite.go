package container

import (
	"github.com/samber/do"
	"github.com/scavin/discourse-bilibili-onebox/internal/embed"
	"github.com/scavin/discourse-bilibili-onebox/internal/linkid"
	"github.com/scavin/discourse-bilibili-onebox/internal/resolver"
	"github.com/scavin/discourse-bilibili-onebox/internal/revision"
	"github.com/scavin/discourse-bilibili-onebox/internal/rewrite"
)

// TransformExpandShortLinks names the revision hook that expands links.
const TransformExpandShortLinks = "expand-short-links"

// RewritePackage provides the text and tree rewriters, the onebox renderer
// and the revision chain.
func RewritePackage(injector *do.Injector) {
	do.ProvideValue(injector, embed.DefaultTemplates())

	do.Provide(injector, func(i *do.Injector) (*rewrite.Text, error) {
		return rewrite.NewText(
			do.MustInvoke[*resolver.Service](i),
			do.MustInvoke[*linkid.Matcher](i),
		), nil
	})

	do.Provide(injector, func(i *do.Injector) (*rewrite.Tree, error) {
		return rewrite.NewTree(
			do.MustInvoke[*resolver.Service](i),
			do.MustInvoke[*linkid.Matcher](i),
			do.MustInvoke[embed.Templates](i),
		), nil
	})

	do.Provide(injector, func(i *do.Injector) (*rewrite.Onebox, error) {
		return rewrite.NewOnebox(
			do.MustInvoke[*resolver.Service](i),
			do.MustInvoke[*linkid.Matcher](i),
			do.MustInvoke[embed.Templates](i),
		), nil
	})

	do.Provide(injector, func(i *do.Injector) (*revision.Chain, error) {
		text := do.MustInvoke[*rewrite.Text](i)

		return revision.NewChain().Use(TransformExpandShortLinks, text.ExpandShortLinks), nil
	})
}
