/*
Copyright 2026 The Beam Operator Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package artifact fetches a BeamService's uploadable jar from its
// spec.package URL (http(s):// or ftp://) into a local temp file, and owns
// that temp file's lifecycle (one file per deployment attempt, deleted on
// every reset/redeploy/delete path).
package artifact

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	beamservicev1 "github.com/oisp-org/beam-operator/api/beamservice/v1"
	apperrors "github.com/oisp-org/beam-operator/internal/errors"
)

// Fetcher downloads a BeamService package into dir and returns the local
// path of the downloaded jar.
type Fetcher struct {
	// Dir is the shared temp directory new jar files are created under.
	Dir        string
	httpClient *http.Client
}

// NewFetcher returns a Fetcher rooted at dir.
func NewFetcher(dir string) *Fetcher {
	return &Fetcher{Dir: dir, httpClient: http.DefaultClient}
}

// Fetch downloads pkg.URL into a new "<uuid>.jar" file under f.Dir.
//
// An unrecognized URL scheme is a permanent validation failure:
// retrying won't help until the user edits the resource.
func (f *Fetcher) Fetch(ctx context.Context, pkg beamservicev1.PackageSpec) (string, error) {
	dest := filepath.Join(f.Dir, uuid.NewString()+".jar")

	switch {
	case strings.HasPrefix(pkg.URL, "http://"), strings.HasPrefix(pkg.URL, "https://"):
		return dest, f.fetchHTTP(ctx, pkg.URL, dest)
	case strings.HasPrefix(pkg.URL, "ftp://"):
		return dest, f.fetchFTP(ctx, pkg.URL, pkg.Username, pkg.Password, dest)
	default:
		return "", apperrors.NewValidationError("invalid package url").
			WithDetailsf("url %q must start with http, https or ftp", pkg.URL)
	}
}

func (f *Fetcher) fetchHTTP(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeTransientUpstream, "building jar download request")
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeTransientUpstream, "downloading jar")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return apperrors.Newf(apperrors.ErrorTypeTransientUpstream, "jar download returned status %d", resp.StatusCode)
	}

	out, err := os.Create(dest)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeInternal, "creating local jar file")
	}
	defer out.Close()
	if _, err := io.Copy(out, resp.Body); err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeTransientUpstream, "writing downloaded jar")
	}
	return nil
}

// fetchFTP retrieves url over plain FTP (RFC 959) using a PASV data
// connection. It always logs in with USER/PASS, using "anonymous" as the
// user name when user is empty.
// Only RETR of a single file is needed, so the control and data channels
// are spoken directly over net.Dial and net/textproto.
func (f *Fetcher) fetchFTP(ctx context.Context, rawURL, user, pass, dest string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeValidation, "parsing ftp url")
	}
	addr := u.Host
	if u.Port() == "" {
		addr = net.JoinHostPort(u.Hostname(), "21")
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeTransientUpstream, "dialing ftp server")
	}
	defer conn.Close()

	ctrl := textproto.NewConn(conn)
	if _, _, err := ctrl.ReadResponse(220); err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeTransientUpstream, "reading ftp banner")
	}

	if user == "" {
		user = "anonymous"
	}
	if err := ctrlCommand(ctrl, "USER "+user, 331, 230); err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeTransientUpstream, "ftp USER")
	}
	if err := ctrlCommand(ctrl, "PASS "+pass, 230); err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeTransientUpstream, "ftp PASS")
	}
	if err := ctrlCommand(ctrl, "TYPE I", 200); err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeTransientUpstream, "ftp TYPE")
	}

	id, err := ctrl.Cmd("PASV")
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeTransientUpstream, "ftp PASV")
	}
	ctrl.StartResponse(id)
	_, pasvMsg, err := ctrl.ReadResponse(227)
	ctrl.EndResponse(id)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeTransientUpstream, "ftp PASV response")
	}
	dataAddr, err := parsePASV(pasvMsg)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeTransientUpstream, "parsing ftp PASV response")
	}

	dataConn, err := d.DialContext(ctx, "tcp", dataAddr)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeTransientUpstream, "dialing ftp data connection")
	}
	defer dataConn.Close()

	rid, err := ctrl.Cmd("RETR %s", u.Path)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeTransientUpstream, "ftp RETR")
	}
	ctrl.StartResponse(rid)
	_, _, err = ctrl.ReadResponse(150)
	ctrl.EndResponse(rid)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeTransientUpstream, "ftp RETR not accepted")
	}

	out, err := os.Create(dest)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeInternal, "creating local jar file")
	}
	defer out.Close()
	if _, err := io.Copy(out, dataConn); err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeTransientUpstream, "streaming ftp RETR data")
	}

	return nil
}

func ctrlCommand(ctrl *textproto.Conn, cmd string, okCodes ...int) error {
	id, err := ctrl.Cmd("%s", cmd)
	if err != nil {
		return err
	}
	ctrl.StartResponse(id)
	defer ctrl.EndResponse(id)
	code, _, err := ctrl.ReadResponse(okCodes[0])
	if err == nil {
		return nil
	}
	for _, ok := range okCodes[1:] {
		if code == ok {
			return nil
		}
	}
	return err
}

// parsePASV extracts the "h1,h2,h3,h4,p1,p2" sextet from a 227 response
// like `227 Entering Passive Mode (127,0,0,1,200,13).` into a dialable
// "host:port" address.
func parsePASV(msg string) (string, error) {
	open := strings.IndexByte(msg, '(')
	close := strings.IndexByte(msg, ')')
	if open < 0 || close < 0 || close <= open {
		return "", fmt.Errorf("unrecognized PASV response %q", msg)
	}
	parts := strings.Split(msg[open+1:close], ",")
	if len(parts) != 6 {
		return "", fmt.Errorf("unrecognized PASV response %q", msg)
	}
	host := strings.Join(parts[:4], ".")
	p1, err1 := strconv.Atoi(parts[4])
	p2, err2 := strconv.Atoi(parts[5])
	if err1 != nil || err2 != nil {
		return "", fmt.Errorf("unrecognized PASV port in %q", msg)
	}
	port := p1*256 + p2
	return net.JoinHostPort(host, strconv.Itoa(port)), nil
}

// Delete removes path if it is set and exists. It is idempotent and safe to
// call on an already-deleted or never-created path.
func Delete(path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting jar %s: %w", path, err)
	}
	return nil
}
