package services

import (
	"context"

	"site-admin-backend/internal/logger"
)

// FileURLResolver turns weak file references into public URLs with one
// batch lookup per call.
type FileURLResolver struct {
	files FileStore
	log   *logger.Logger
}

func NewFileURLResolver(files FileStore, log *logger.Logger) *FileURLResolver {
	return &FileURLResolver{
		files: files,
		log:   logger.OrNop(log).With("service", "FileURLResolver"),
	}
}

// ResolveURLs maps each distinct non-empty id to its URL. Ids that do not
// resolve are simply absent from the result. A failed lookup is logged and
// yields an empty map so listings still render.
func (r *FileURLResolver) ResolveURLs(ctx context.Context, refs []*string) map[string]string {
	ids := distinctIDs(refs)
	urls := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return urls
	}

	files, err := r.files.GetStoredFilesByIDs(ctx, ids)
	if err != nil {
		r.log.Warn("file url lookup failed", "ids", len(ids), "err", err)
		return urls
	}
	for _, f := range files {
		urls[f.ID] = f.URL
	}
	return urls
}

// Lookup returns the URL for ref from a ResolveURLs result, or nil.
func Lookup(urls map[string]string, ref *string) *string {
	if ref == nil {
		return nil
	}
	u, ok := urls[*ref]
	if !ok {
		return nil
	}
	return &u
}

func distinctIDs(refs []*string) []string {
	seen := make(map[string]struct{}, len(refs))
	ids := make([]string, 0, len(refs))
	for _, ref := range refs {
		if ref == nil || *ref == "" {
			continue
		}
		if _, ok := seen[*ref]; ok {
			continue
		}
		seen[*ref] = struct{}{}
		ids = append(ids, *ref)
	}
	return ids
}
