package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"sort"
	"time"

	"github.com/mkravets/jobvault/internal/common"
	"github.com/mkravets/jobvault/internal/logging"
	"github.com/mkravets/jobvault/internal/retryx"
)

const folderMimeType = "application/vnd.google-apps.folder"

// DriveConfig configures the drive-style backend.
type DriveConfig struct {
	// APIBase is the metadata endpoint root, e.g. https://host/drive/v3.
	APIBase string
	// UploadBase is the upload endpoint root, e.g. https://host/upload/drive/v3.
	UploadBase string
	// FolderName is the well-known app folder holding all backups.
	FolderName string

	Policy     retryx.Policy
	HTTPClient *http.Client
}

// DriveClient talks to a drive-style object service: bearer-token auth,
// folder discovery by name, multipart uploads. The service is not trusted;
// downloaded payloads must still pass schema validation in the caller.
type DriveClient struct {
	cfg     DriveConfig
	httpc   *http.Client
	session *Session
	log     logging.Logger

	// folderId caches the app folder for the session to avoid repeated
	// lookups.
	folderId string
}

// NewDriveClient builds a client on top of an authenticated session.
func NewDriveClient(cfg DriveConfig, session *Session, log logging.Logger) *DriveClient {
	httpc := cfg.HTTPClient
	if httpc == nil {
		httpc = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg.Policy.MaxAttempts == 0 {
		cfg.Policy = retryx.DefaultPolicy()
	}
	return &DriveClient{cfg: cfg, httpc: httpc, session: session, log: log}
}

type driveFile struct {
	Id           string    `json:"id"`
	Name         string    `json:"name"`
	MimeType     string    `json:"mimeType"`
	ModifiedTime time.Time `json:"modifiedTime"`
}

type driveFileList struct {
	Files []driveFile `json:"files"`
}

// Upload stores data as a new object in the app folder via a multipart
// request: a JSON metadata part followed by the content part.
func (c *DriveClient) Upload(ctx context.Context, name string, data []byte) (string, error) {
	folderId, err := c.ensureFolder(ctx)
	if err != nil {
		return "", err
	}

	meta, err := json.Marshal(map[string]any{
		"name":    name,
		"parents": []string{folderId},
	})
	if err != nil {
		return "", err
	}

	body, err := c.do(ctx, func() (*http.Request, error) {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)

		part, err := w.CreatePart(textproto.MIMEHeader{
			"Content-Type": {"application/json; charset=UTF-8"},
		})
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(meta); err != nil {
			return nil, err
		}

		part, err = w.CreatePart(textproto.MIMEHeader{
			"Content-Type": {"application/json"},
		})
		if err != nil {
			return nil, err
		}
		if _, err := part.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.cfg.UploadBase+"/files?uploadType=multipart", &buf)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "multipart/related; boundary="+w.Boundary())
		return req, nil
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", name, err)
	}

	var created driveFile
	if err := json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("%w: upload response: %v", common.ErrMalformedData, err)
	}
	c.log.Info(ctx, "snapshot uploaded", "name", name, "id", created.Id, "bytes", len(data))
	return created.Id, nil
}

// List returns the objects in the app folder, newest first.
func (c *DriveClient) List(ctx context.Context) ([]ObjectInfo, error) {
	folderId, err := c.ensureFolder(ctx)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("q", fmt.Sprintf("'%s' in parents and trashed = false", folderId))
	q.Set("fields", "files(id, name, modifiedTime)")

	body, err := c.do(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet,
			c.cfg.APIBase+"/files?"+q.Encode(), nil)
	})
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}

	var list driveFileList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("%w: list response: %v", common.ErrMalformedData, err)
	}

	objects := make([]ObjectInfo, 0, len(list.Files))
	for _, f := range list.Files {
		objects = append(objects, ObjectInfo{ID: f.Id, Name: f.Name, Modified: f.ModifiedTime})
	}
	sort.Slice(objects, func(i, j int) bool {
		return objects[i].Modified.After(objects[j].Modified)
	})
	return objects, nil
}

// Download fetches object content by id.
func (c *DriveClient) Download(ctx context.Context, id string) ([]byte, error) {
	body, err := c.do(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet,
			c.cfg.APIBase+"/files/"+url.PathEscape(id)+"?alt=media", nil)
	})
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", id, err)
	}
	return body, nil
}

// Delete removes an object by id.
func (c *DriveClient) Delete(ctx context.Context, id string) error {
	_, err := c.do(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodDelete,
			c.cfg.APIBase+"/files/"+url.PathEscape(id), nil)
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	return nil
}

// ensureFolder finds the well-known app folder, creating it when absent,
// and caches its id for the rest of the session.
func (c *DriveClient) ensureFolder(ctx context.Context) (string, error) {
	if c.folderId != "" {
		return c.folderId, nil
	}

	q := url.Values{}
	q.Set("q", fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false",
		c.cfg.FolderName, folderMimeType))
	q.Set("fields", "files(id, name)")

	body, err := c.do(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet,
			c.cfg.APIBase+"/files?"+q.Encode(), nil)
	})
	if err != nil {
		return "", fmt.Errorf("find app folder: %w", err)
	}

	var list driveFileList
	if err := json.Unmarshal(body, &list); err != nil {
		return "", fmt.Errorf("%w: folder lookup response: %v", common.ErrMalformedData, err)
	}
	if len(list.Files) > 0 {
		c.folderId = list.Files[0].Id
		return c.folderId, nil
	}

	meta, err := json.Marshal(map[string]string{
		"name":     c.cfg.FolderName,
		"mimeType": folderMimeType,
	})
	if err != nil {
		return "", err
	}
	body, err = c.do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			c.cfg.APIBase+"/files", bytes.NewReader(meta))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return "", fmt.Errorf("create app folder: %w", err)
	}

	var created driveFile
	if err := json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("%w: folder create response: %v", common.ErrMalformedData, err)
	}
	c.log.Info(ctx, "app folder created", "name", c.cfg.FolderName, "id", created.Id)
	c.folderId = created.Id
	return c.folderId, nil
}

// do executes one logical remote call under the retry policy. Each attempt
// rebuilds the request (bodies are not rewindable), attaches a bearer token,
// and classifies the response: 429 and 5xx are transient and retried, 401
// triggers one reactive token refresh, everything else fails immediately.
func (c *DriveClient) do(ctx context.Context, build func() (*http.Request, error)) ([]byte, error) {
	var body []byte

	err := c.cfg.Policy.Do(ctx, func(ctx context.Context) error {
		refreshed := false
		for {
			req, err := build()
			if err != nil {
				return err
			}

			token, err := c.session.AccessToken(ctx)
			if err != nil {
				return err
			}
			req.Header.Set("Authorization", "Bearer "+token)

			resp, err := c.httpc.Do(req)
			if err != nil {
				return retryx.Transient(fmt.Errorf("%w: %v", common.ErrTransient, err))
			}
			data, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()

			switch {
			case resp.StatusCode == http.StatusUnauthorized:
				if refreshed {
					return fmt.Errorf("%w: request re-authorization failed", common.ErrTokenExpired)
				}
				refreshed = true
				if err := c.session.ForceRefresh(ctx); err != nil {
					return err
				}
				continue

			case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
				return retryx.Transient(fmt.Errorf("%w: status %d", common.ErrTransient, resp.StatusCode))

			case resp.StatusCode == http.StatusNotFound:
				return fmt.Errorf("%w: %s", common.ErrNotFound, req.URL.Path)

			case resp.StatusCode >= 400:
				return fmt.Errorf("remote request failed: status %d: %s", resp.StatusCode, data)
			}

			if readErr != nil {
				return retryx.Transient(fmt.Errorf("%w: read body: %v", common.ErrTransient, readErr))
			}
			body = data
			return nil
		}
	})
	return body, err
}
