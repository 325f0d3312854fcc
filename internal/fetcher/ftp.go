package fetcher

import (
	"context"
	"io"
	"net"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// FTPOptions configures the telematics drop-zone sync.
type FTPOptions struct {
	User     string
	Password string
	Timeout  time.Duration
}

// FTPSync downloads daily telematics exports from a vendor FTP drop zone.
type FTPSync struct {
	opts FTPOptions
}

// NewFTPSync creates an FTPSync. Anonymous login is used when no user is set.
func NewFTPSync(opts FTPOptions) *FTPSync {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.User == "" {
		opts.User = "anonymous"
		opts.Password = "anonymous@"
	}
	return &FTPSync{opts: opts}
}

// parseFTPURL extracts host (with port) and directory path from an FTP URL.
func parseFTPURL(rawURL string) (host string, dir string, err error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", eris.Wrap(err, "ftp: parse url")
	}
	if u.Scheme != "ftp" {
		return "", "", eris.Errorf("ftp: expected ftp scheme, got %q", u.Scheme)
	}

	host = u.Host
	if _, _, splitErr := net.SplitHostPort(host); splitErr != nil {
		host = net.JoinHostPort(host, "21")
	}

	return host, u.Path, nil
}

// PullDated lists the remote drop directory and downloads every CSV whose name
// contains the YYYYMMDD stamp into destDir. Returns the local paths written.
// An empty result is source-absent for the date, not an error.
func (f *FTPSync) PullDated(ctx context.Context, dropURL, stamp, destDir string) ([]string, error) {
	host, dir, err := parseFTPURL(dropURL)
	if err != nil {
		return nil, err
	}

	log := zap.L().With(zap.String("host", host), zap.String("dir", dir))
	log.Debug("ftp: connecting to drop zone")

	conn, err := ftp.Dial(host, ftp.DialWithTimeout(f.opts.Timeout), ftp.DialWithContext(ctx))
	if err != nil {
		return nil, eris.Wrap(err, "ftp: dial")
	}
	defer conn.Quit() //nolint:errcheck

	if err := conn.Login(f.opts.User, f.opts.Password); err != nil {
		return nil, eris.Wrap(err, "ftp: login")
	}

	entries, err := conn.List(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "ftp: list %s", dir)
	}

	var pulled []string
	for _, e := range entries {
		if e.Type != ftp.EntryTypeFile {
			continue
		}
		name := strings.ToLower(e.Name)
		if !strings.HasSuffix(name, ".csv") || !strings.Contains(name, stamp) {
			continue
		}

		local := filepath.Join(destDir, e.Name)
		if err := f.retrToFile(conn, path.Join(dir, e.Name), local); err != nil {
			log.Warn("ftp: download failed", zap.String("file", e.Name), zap.Error(err))
			continue
		}
		log.Info("ftp: pulled export", zap.String("file", e.Name), zap.String("dest", local))
		pulled = append(pulled, local)
	}

	return pulled, nil
}

func (f *FTPSync) retrToFile(conn *ftp.ServerConn, remote, local string) error {
	resp, err := conn.Retr(remote)
	if err != nil {
		return eris.Wrapf(err, "ftp: retrieve %s", remote)
	}
	defer resp.Close() //nolint:errcheck

	file, err := os.Create(local)
	if err != nil {
		return eris.Wrapf(err, "ftp: create %s", local)
	}
	defer file.Close() //nolint:errcheck

	if _, err := io.Copy(file, resp); err != nil {
		return eris.Wrap(err, "ftp: write file")
	}
	return nil
}
