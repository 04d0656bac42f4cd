package cmd

import (
	"context"
	"os"

	"github.com/bytedance/sonic"
	"github.com/gogf/gf/v2/frame/g"
	"github.com/gogf/gf/v2/net/ghttp"
	"github.com/gogf/gf/v2/os/gcmd"

	"github.com/laborguard/laborguard/core/convert"
	"github.com/laborguard/laborguard/core/errors"
	"github.com/laborguard/laborguard/core/ingest"
	"github.com/laborguard/laborguard/internal/controller/laborguard"
)

var (
	Main = gcmd.Command{
		Name:  "laborguard",
		Usage: "laborguard",
		Brief: "start labor law QA http server",
		Func: func(ctx context.Context, parser *gcmd.Parser) (err error) {
			a, err := buildApp(ctx)
			if err != nil {
				return err
			}

			s := g.Server()
			s.Group("/api", func(group *ghttp.RouterGroup) {
				group.Middleware(MiddlewareHandlerResponse, ghttp.MiddlewareCORS)
				group.Bind(
					laborguard.NewV1(a.orchestrator, a.pipeline, a.converter, a.store, a.registry),
				)
			})
			s.Run()
			return nil
		},
	}

	Ingest = gcmd.Command{
		Name:  "ingest",
		Usage: "laborguard ingest",
		Brief: "ingest all legal documents from the configured source",
		Func: func(ctx context.Context, parser *gcmd.Parser) (err error) {
			a, err := buildApp(ctx)
			if err != nil {
				return err
			}
			defer a.close(ctx)

			src, err := a.newSource(ctx)
			if err != nil {
				return err
			}

			docs, err := ingest.LoadFromSource(ctx, src)
			if err != nil {
				return err
			}
			if len(docs) == 0 {
				g.Log().Warning(ctx, "no documents found in source")
				return nil
			}

			results := a.pipeline.IngestAll(ctx, docs)
			failed := 0
			for _, r := range results {
				if r.Err != nil {
					failed++
					g.Log().Errorf(ctx, "document %s failed: %v", r.DocumentID, r.Err)
				}
			}
			g.Log().Infof(ctx, "ingestion finished: %d documents, %d failed", len(results), failed)
			if failed > 0 {
				return errors.Newf(errors.ErrIngestionFailed, "%d of %d documents failed", failed, len(results))
			}
			return nil
		},
	}

	Convert = gcmd.Command{
		Name:  "convert",
		Usage: "laborguard convert -u URI -d DOCUMENT_ID -t TITLE [-o OUTPUT]",
		Brief: "convert raw statute text into a document JSON file",
		Arguments: []gcmd.Argument{
			{Name: "uri", Short: "u", Brief: "local file path or URL of the statute text"},
			{Name: "id", Short: "d", Brief: "stable document id"},
			{Name: "title", Short: "t", Brief: "document title"},
			{Name: "output", Short: "o", Brief: "output JSON file path, defaults to <id>.json"},
		},
		Func: func(ctx context.Context, parser *gcmd.Parser) (err error) {
			uri := parser.GetOpt("uri").String()
			documentID := parser.GetOpt("id").String()
			title := parser.GetOpt("title").String()
			if uri == "" || documentID == "" || title == "" {
				return errors.New(errors.ErrInvalidParameter, "uri, id and title are required")
			}

			converter, err := convert.NewConverter(ctx)
			if err != nil {
				return err
			}

			doc, err := converter.Convert(ctx, uri, documentID, title)
			if err != nil {
				return err
			}

			output := parser.GetOpt("output", documentID+".json").String()
			data, err := sonic.MarshalIndent(doc, "", "  ")
			if err != nil {
				return errors.Wrap(errors.ErrConvertFailed, err, "failed to marshal document")
			}
			if err = os.WriteFile(output, data, 0o644); err != nil {
				return errors.Wrap(errors.ErrConvertFailed, err, "failed to write "+output)
			}

			g.Log().Infof(ctx, "converted %d articles from %s into %s", len(doc.Articles), uri, output)
			return nil
		},
	}
)

func init() {
	if err := Main.AddCommand(&Ingest, &Convert); err != nil {
		panic(err)
	}
}
