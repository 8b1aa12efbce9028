package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scientify/models"
	"scientify/services"
)

type recordingIngester struct {
	got services.UploadRequest
	err error
}

func (r *recordingIngester) Ingest(_ context.Context, req services.UploadRequest) (*models.UploadResponse, error) {
	r.got = req
	if r.err != nil {
		return nil, r.err
	}
	return &models.UploadResponse{ID: 7, Title: req.Title, OriginalFilename: req.Filename, MetadataSource: services.SourceManual}, nil
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestBuildRequest(t *testing.T) {
	owner := uuid.New()
	doc := writeFile(t, "paper.tex", `\section{Intro}`)
	bib := writeFile(t, "ref.bib", `@article{k, title={T}}`)

	req, err := buildRequest(ingestOptions{File: doc, BibTeX: bib, Title: "Override", Year: "2021", User: owner.String()})

	require.NoError(t, err)
	assert.Equal(t, "paper.tex", req.Filename)
	assert.Equal(t, []byte(`\section{Intro}`), req.Content)
	assert.Equal(t, []byte(`@article{k, title={T}}`), req.BibTeX)
	assert.Equal(t, "Override", req.Title)
	assert.Equal(t, "2021", req.Year)
	assert.Equal(t, owner, req.UserID)
}

func TestBuildRequest_Errors(t *testing.T) {
	doc := writeFile(t, "paper.pdf", "%PDF-1.4")

	_, err := buildRequest(ingestOptions{File: doc, User: "nope"})
	assert.ErrorContains(t, err, "--user")

	_, err = buildRequest(ingestOptions{File: filepath.Join(t.TempDir(), "missing.pdf"), User: uuid.NewString()})
	assert.ErrorContains(t, err, "--file")

	_, err = buildRequest(ingestOptions{File: doc, BibTeX: "/does/not/exist.bib", User: uuid.NewString()})
	assert.ErrorContains(t, err, "--bibtex")
}

func TestIngestAndPrint(t *testing.T) {
	svc := &recordingIngester{}
	var out bytes.Buffer

	err := ingestAndPrint(context.Background(), svc, services.UploadRequest{Filename: "a.pdf", MetadataInput: services.MetadataInput{Title: "A"}}, &out)

	require.NoError(t, err)
	var resp models.UploadResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, uint(7), resp.ID)
	assert.Equal(t, "a.pdf", resp.OriginalFilename)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitDataError, exitCode(fmt.Errorf("x: %w", &services.ValidationError{Message: "missing required fields"})))
	assert.Equal(t, exitDataError, exitCode(&services.ConflictError{Identifier: "10.1000/x"}))
	assert.Equal(t, exitError, exitCode(assert.AnError))

	svc := &recordingIngester{err: &services.ConflictError{Identifier: "10.1000/x"}}
	err := ingestAndPrint(context.Background(), svc, services.UploadRequest{}, &bytes.Buffer{})
	assert.Equal(t, exitDataError, exitCode(err))
}
