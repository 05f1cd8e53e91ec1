package retrieval_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/fileshare/core/challenge"
	"github.com/dmitrymomot/fileshare/core/file"
	"github.com/dmitrymomot/fileshare/core/preview"
	"github.com/dmitrymomot/fileshare/core/retrieval"
)

// mockBackend implements retrieval.Backend for testing.
type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) FileInfo(ctx context.Context, fileID, downloadCode string) (file.Record, error) {
	args := m.Called(ctx, fileID, downloadCode)
	return args.Get(0).(file.Record), args.Error(1)
}

func (m *mockBackend) DownloadFile(ctx context.Context, fileID, downloadCode string) (retrieval.Payload, error) {
	args := m.Called(ctx, fileID, downloadCode)
	return args.Get(0).(retrieval.Payload), args.Error(1)
}

func (m *mockBackend) PreviewFile(ctx context.Context, fileID, downloadCode string) (retrieval.Payload, error) {
	args := m.Called(ctx, fileID, downloadCode)
	return args.Get(0).(retrieval.Payload), args.Error(1)
}

func publicRecord(id string) file.Record {
	return file.Record{ID: id, Filename: "pub.txt", Visibility: file.Public, CanPreview: true}
}

func privateRecord(id string) file.Record {
	return file.Record{ID: id, Filename: "secret.pdf", Visibility: file.Private, CanPreview: true}
}

func TestOrchestrator_ResolveDownload(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("public file downloads without a challenge", func(t *testing.T) {
		t.Parallel()

		backend := &mockBackend{}
		backend.On("FileInfo", ctx, "1", "").Return(publicRecord("1"), nil).Once()
		backend.On("DownloadFile", ctx, "1", "").Return(retrieval.Payload{
			Data:   []byte("bytes"),
			Header: http.Header{"Content-Disposition": []string{`attachment; filename="pub.txt"`}},
		}, nil).Once()

		o := retrieval.New(backend)
		out, err := o.ResolveDownload(ctx, "1", false, "")
		require.NoError(t, err)
		assert.False(t, out.Pending)
		assert.Equal(t, "pub.txt", out.Filename)
		assert.Equal(t, []byte("bytes"), out.Data)
		backend.AssertExpectations(t)
	})

	t.Run("filename falls back to the record", func(t *testing.T) {
		t.Parallel()

		backend := &mockBackend{}
		backend.On("FileInfo", ctx, "1", "").Return(publicRecord("1"), nil).Once()
		backend.On("DownloadFile", ctx, "1", "").Return(retrieval.Payload{
			Data:   []byte("bytes"),
			Header: http.Header{},
		}, nil).Once()

		o := retrieval.New(backend)
		out, err := o.ResolveDownload(ctx, "1", false, "")
		require.NoError(t, err)
		assert.Equal(t, "pub.txt", out.Filename)
	})

	t.Run("owner downloads a private file without a code", func(t *testing.T) {
		t.Parallel()

		backend := &mockBackend{}
		backend.On("FileInfo", ctx, "2", "").Return(privateRecord("2"), nil).Once()
		backend.On("DownloadFile", ctx, "2", "").Return(retrieval.Payload{Data: []byte("x")}, nil).Once()

		o := retrieval.New(backend)
		out, err := o.ResolveDownload(ctx, "2", true, "")
		require.NoError(t, err)
		assert.False(t, out.Pending)
		backend.AssertExpectations(t)
	})

	t.Run("private file without a code suspends", func(t *testing.T) {
		t.Parallel()

		backend := &mockBackend{}
		backend.On("FileInfo", ctx, "2", "").Return(privateRecord("2"), nil).Once()

		o := retrieval.New(backend)
		out, err := o.ResolveDownload(ctx, "2", false, "")
		require.NoError(t, err)
		assert.True(t, out.Pending)
		assert.Equal(t, "2", out.Session.FileID)
		assert.Equal(t, challenge.Download, out.Session.Operation)
		assert.False(t, out.Session.WrongCode)

		// No byte fetch was attempted.
		backend.AssertNotCalled(t, "DownloadFile", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("known code passes the gate and the fetch", func(t *testing.T) {
		t.Parallel()

		backend := &mockBackend{}
		backend.On("FileInfo", ctx, "2", "A1B2").Return(privateRecord("2"), nil).Once()
		backend.On("DownloadFile", ctx, "2", "A1B2").Return(retrieval.Payload{Data: []byte("x")}, nil).Once()

		o := retrieval.New(backend)
		out, err := o.ResolveDownload(ctx, "2", false, "A1B2")
		require.NoError(t, err)
		assert.False(t, out.Pending)
		backend.AssertExpectations(t)
	})

	t.Run("info 403 suspends on the challenge", func(t *testing.T) {
		t.Parallel()

		backend := &mockBackend{}
		backend.On("FileInfo", ctx, "2", "").Return(file.Record{}, retrieval.ErrCredentialRequired).Once()

		o := retrieval.New(backend)
		out, err := o.ResolveDownload(ctx, "2", false, "")
		require.NoError(t, err)
		assert.True(t, out.Pending)
		assert.False(t, out.Session.WrongCode)
	})

	t.Run("not found propagates", func(t *testing.T) {
		t.Parallel()

		backend := &mockBackend{}
		backend.On("FileInfo", ctx, "9", "").Return(file.Record{}, retrieval.ErrNotFound).Once()

		o := retrieval.New(backend)
		_, err := o.ResolveDownload(ctx, "9", false, "")
		require.ErrorIs(t, err, retrieval.ErrNotFound)
	})
}

func TestOrchestrator_ResolvePreview(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("image preview yields a blob-backed plan", func(t *testing.T) {
		t.Parallel()

		backend := &mockBackend{}
		backend.On("FileInfo", ctx, "1", "").Return(publicRecord("1"), nil).Once()
		backend.On("PreviewFile", ctx, "1", "").Return(retrieval.Payload{
			Data:        []byte{0x89, 'P', 'N', 'G'},
			ContentType: "image/png",
			Header:      http.Header{},
		}, nil).Once()

		o := retrieval.New(backend)
		out, err := o.ResolvePreview(ctx, "1", false, "")
		require.NoError(t, err)
		require.NotNil(t, out.Plan)
		assert.Equal(t, preview.Image, out.Plan.Strategy)
		require.NotNil(t, out.Plan.Content)

		data, err := out.Plan.Content.Bytes()
		require.NoError(t, err)
		assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, data)

		out.Plan.Discard()
		assert.True(t, out.Plan.Content.Released())
	})

	t.Run("html preview decodes to text", func(t *testing.T) {
		t.Parallel()

		backend := &mockBackend{}
		backend.On("FileInfo", ctx, "1", "").Return(publicRecord("1"), nil).Once()
		backend.On("PreviewFile", ctx, "1", "").Return(retrieval.Payload{
			Data:        []byte("<!DOCTYPE html><p>hi</p>"),
			ContentType: "text/html",
			Header:      http.Header{},
		}, nil).Once()

		o := retrieval.New(backend)
		out, err := o.ResolvePreview(ctx, "1", false, "")
		require.NoError(t, err)
		assert.Equal(t, preview.InlineHTML, out.Plan.Strategy)
		assert.Equal(t, "<!DOCTYPE html><p>hi</p>", out.Plan.Text)
		assert.Nil(t, out.Plan.Content)
	})

	t.Run("gbk text decodes through the fallback", func(t *testing.T) {
		t.Parallel()

		backend := &mockBackend{}
		backend.On("FileInfo", ctx, "1", "").Return(publicRecord("1"), nil).Once()
		backend.On("PreviewFile", ctx, "1", "").Return(retrieval.Payload{
			Data:        []byte{0xD6, 0xD0, 0xCE, 0xC4},
			ContentType: "text/plain",
			Header:      http.Header{},
		}, nil).Once()

		o := retrieval.New(backend)
		out, err := o.ResolvePreview(ctx, "1", false, "")
		require.NoError(t, err)
		assert.Equal(t, preview.InlineText, out.Plan.Strategy)
		assert.Equal(t, "中文", out.Plan.Text)
	})

	t.Run("undecodable text surfaces DecodeFailure", func(t *testing.T) {
		t.Parallel()

		backend := &mockBackend{}
		backend.On("FileInfo", ctx, "1", "").Return(publicRecord("1"), nil).Once()
		backend.On("PreviewFile", ctx, "1", "").Return(retrieval.Payload{
			Data:        []byte{0xFF, 0xFE, 0xFD},
			ContentType: "text/plain",
			Header:      http.Header{},
		}, nil).Once()

		o := retrieval.New(backend)
		_, err := o.ResolvePreview(ctx, "1", false, "")
		require.ErrorIs(t, err, retrieval.ErrDecodeFailure)
	})

	t.Run("server-declared non-previewable short-circuits", func(t *testing.T) {
		t.Parallel()

		rec := publicRecord("1")
		rec.CanPreview = false

		backend := &mockBackend{}
		backend.On("FileInfo", ctx, "1", "").Return(rec, nil).Once()

		o := retrieval.New(backend)
		out, err := o.ResolvePreview(ctx, "1", false, "")
		require.NoError(t, err)
		assert.Equal(t, preview.Unsupported, out.Plan.Strategy)
		assert.Equal(t, "pub.txt", out.Plan.DisplayTitle)

		// The short-circuit skips only the fetch, never the gate.
		backend.AssertNotCalled(t, "PreviewFile", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unsupported server 400 propagates", func(t *testing.T) {
		t.Parallel()

		backend := &mockBackend{}
		backend.On("FileInfo", ctx, "1", "").Return(publicRecord("1"), nil).Once()
		backend.On("PreviewFile", ctx, "1", "").Return(retrieval.Payload{}, retrieval.ErrUnsupportedType).Once()

		o := retrieval.New(backend)
		_, err := o.ResolvePreview(ctx, "1", false, "")
		require.ErrorIs(t, err, retrieval.ErrUnsupportedType)
	})

	t.Run("private file without a code suspends for preview", func(t *testing.T) {
		t.Parallel()

		backend := &mockBackend{}
		backend.On("FileInfo", ctx, "2", "").Return(privateRecord("2"), nil).Once()

		o := retrieval.New(backend)
		out, err := o.ResolvePreview(ctx, "2", false, "")
		require.NoError(t, err)
		assert.True(t, out.Pending)
		assert.Equal(t, challenge.Preview, out.Session.Operation)
	})
}

func TestOrchestrator_SubmitCode(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("resumes the suspended download with the code", func(t *testing.T) {
		t.Parallel()

		backend := &mockBackend{}
		backend.On("FileInfo", ctx, "2", "").Return(privateRecord("2"), nil).Once()
		backend.On("FileInfo", ctx, "2", "A1B2").Return(privateRecord("2"), nil).Once()
		backend.On("DownloadFile", ctx, "2", "A1B2").Return(retrieval.Payload{
			Data:   []byte("secret"),
			Header: http.Header{},
		}, nil).Once()

		o := retrieval.New(backend)
		out, err := o.ResolveDownload(ctx, "2", false, "")
		require.NoError(t, err)
		require.True(t, out.Pending)

		resumption, err := o.SubmitCode(ctx, "A1B2")
		require.NoError(t, err)
		assert.Equal(t, challenge.Download, resumption.Operation)
		require.NotNil(t, resumption.Download)
		assert.Equal(t, []byte("secret"), resumption.Download.Data)

		// Exactly one retrieval call was issued with the code.
		backend.AssertExpectations(t)

		// The challenge is closed.
		_, open := o.Challenge()
		assert.False(t, open)
	})

	t.Run("rejected code reopens the challenge flagged wrong-code", func(t *testing.T) {
		t.Parallel()

		backend := &mockBackend{}
		backend.On("FileInfo", ctx, "2", "").Return(privateRecord("2"), nil).Once()
		backend.On("FileInfo", ctx, "2", "0000").Return(privateRecord("2"), nil).Once()
		backend.On("DownloadFile", ctx, "2", "0000").Return(retrieval.Payload{}, retrieval.ErrCredentialRequired).Once()

		o := retrieval.New(backend)
		_, err := o.ResolveDownload(ctx, "2", false, "")
		require.NoError(t, err)

		resumption, err := o.SubmitCode(ctx, "0000")
		require.NoError(t, err, "a rejected code is not a transport error")
		require.NotNil(t, resumption.Download)
		assert.True(t, resumption.Download.Pending)
		assert.True(t, resumption.Download.Session.WrongCode)

		sess, open := o.Challenge()
		require.True(t, open)
		assert.True(t, sess.WrongCode)
	})

	t.Run("invalid code fails locally and keeps the session", func(t *testing.T) {
		t.Parallel()

		backend := &mockBackend{}
		backend.On("FileInfo", ctx, "2", "").Return(privateRecord("2"), nil).Once()

		o := retrieval.New(backend)
		_, err := o.ResolveDownload(ctx, "2", false, "")
		require.NoError(t, err)

		_, err = o.SubmitCode(ctx, "12")
		require.ErrorIs(t, err, challenge.ErrInvalidCode)

		_, open := o.Challenge()
		assert.True(t, open)
		backend.AssertNumberOfCalls(t, "FileInfo", 1)
	})

	t.Run("submit without a session", func(t *testing.T) {
		t.Parallel()

		o := retrieval.New(&mockBackend{})
		_, err := o.SubmitCode(ctx, "A1B2")
		require.ErrorIs(t, err, challenge.ErrNoSession)
	})

	t.Run("resumes a suspended preview", func(t *testing.T) {
		t.Parallel()

		backend := &mockBackend{}
		backend.On("FileInfo", ctx, "2", "").Return(privateRecord("2"), nil).Once()
		backend.On("FileInfo", ctx, "2", "A1B2").Return(privateRecord("2"), nil).Once()
		backend.On("PreviewFile", ctx, "2", "A1B2").Return(retrieval.Payload{
			Data:        []byte("%PDF-"),
			ContentType: "application/pdf",
			Header:      http.Header{},
		}, nil).Once()

		o := retrieval.New(backend)
		_, err := o.ResolvePreview(ctx, "2", false, "")
		require.NoError(t, err)

		resumption, err := o.SubmitCode(ctx, "A1B2")
		require.NoError(t, err)
		assert.Equal(t, challenge.Preview, resumption.Operation)
		require.NotNil(t, resumption.Preview)
		assert.Equal(t, preview.EmbeddedDocument, resumption.Preview.Plan.Strategy)
	})
}

func TestOrchestrator_CancelChallenge(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	backend := &mockBackend{}
	backend.On("FileInfo", ctx, "2", "").Return(privateRecord("2"), nil).Once()

	o := retrieval.New(backend)
	_, err := o.ResolveDownload(ctx, "2", false, "")
	require.NoError(t, err)

	require.NoError(t, o.CancelChallenge())
	_, open := o.Challenge()
	assert.False(t, open)

	// Nothing was fetched for the abandoned operation.
	backend.AssertNotCalled(t, "DownloadFile", mock.Anything, mock.Anything, mock.Anything)
}
