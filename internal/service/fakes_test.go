package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Farid841/rara/internal/model"
)

type fakeEmbedder struct {
	calls  []string
	vector []float32
	err    error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls = append(f.calls, text)
	if f.err != nil {
		return nil, f.err
	}
	if f.vector != nil {
		return f.vector, nil
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (f *fakeEmbedder) Deployment() string {
	return "fake-embedding"
}

type upsertCall struct {
	id      string
	content string
}

type fakeIndex struct {
	upserts     []upsertCall
	upsertErr   error
	searchCalls []int
	results     []string
	searchErr   error
}

func (f *fakeIndex) Upsert(ctx context.Context, id, content string, embedding []float32) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.upserts = append(f.upserts, upsertCall{id: id, content: content})
	return nil
}

func (f *fakeIndex) Search(ctx context.Context, vector []float32, topK int) ([]string, error) {
	f.searchCalls = append(f.searchCalls, topK)
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.results, nil
}

type fakeCompleter struct {
	conversations [][]model.ChatMessage
	answer        string
	err           error
}

func (f *fakeCompleter) Complete(ctx context.Context, messages []model.ChatMessage) (string, error) {
	f.conversations = append(f.conversations, messages)
	if f.err != nil {
		return "", f.err
	}
	if f.answer != "" {
		return f.answer, nil
	}
	return "generated answer", nil
}

type fakeArchive struct {
	saved map[string][]byte
	err   error
}

func (f *fakeArchive) Type() string {
	return "fake"
}

func (f *fakeArchive) Save(ctx context.Context, key string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	if f.saved == nil {
		f.saved = make(map[string][]byte)
	}
	f.saved[key] = data
	return nil
}

var errRemote = errors.New("remote unavailable")

func textFile(name, content string) model.UploadFile {
	return model.UploadFile{Name: name, Bytes: []byte(content)}
}

func csvFile(name string) model.UploadFile {
	return model.UploadFile{Name: name, Bytes: []byte(fmt.Sprintf("%s,a,b", name))}
}
