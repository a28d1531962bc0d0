package ftputil

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/spf13/afero"

	"github.com/FleexSecurity/funcdeploy/pkg/models"
	"github.com/FleexSecurity/funcdeploy/pkg/utils"
)

const defaultPort = "21"

// Conn is the part of an FTP session the uploader needs. *ftp.ServerConn satisfies it.
type Conn interface {
	Login(user, password string) error
	CurrentDir() (string, error)
	ChangeDir(path string) error
	Type(transferType ftp.TransferType) error
	Stor(path string, r io.Reader) error
	Quit() error
}

type Dialer func(ctx context.Context, addr string, timeout time.Duration) (Conn, error)

func DialFTP(ctx context.Context, addr string, timeout time.Duration) (Conn, error) {
	c, err := ftp.Dial(addr, ftp.DialWithContext(ctx), ftp.DialWithTimeout(timeout))
	if err != nil {
		return nil, err
	}
	return c, nil
}

type Uploader struct {
	Fs      afero.Fs
	Dial    Dialer
	Timeout time.Duration
}

func NewUploader(timeout time.Duration) *Uploader {
	return &Uploader{
		Fs:      afero.NewOsFs(),
		Dial:    DialFTP,
		Timeout: timeout,
	}
}

// HostAddr turns a publish URL such as ftp://waws-prod.ftp.azurewebsites.windows.net/site/wwwroot
// into host:port.
func HostAddr(publishURL string) (string, error) {
	u, err := url.Parse(publishURL)
	if err != nil {
		return "", err
	}
	if u.Host == "" {
		return "", fmt.Errorf("no host in publish url %q", publishURL)
	}
	if u.Port() != "" {
		return u.Host, nil
	}
	return net.JoinHostPort(u.Hostname(), defaultPort), nil
}

// ListFiles returns the names of the regular files directly under dir.
func (u *Uploader) ListFiles(dir string) ([]string, error) {
	infos, err := afero.ReadDir(u.Fs, dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, info := range infos {
		if info.Mode().IsRegular() {
			files = append(files, info.Name())
		}
	}
	return files, nil
}

// UploadDirectory stores every regular file directly under localPath into remoteDir, in ASCII
// mode. The session's working directory is restored before quitting.
func (u *Uploader) UploadDirectory(ctx context.Context, creds models.Credentials, remoteDir, localPath string) (uploaded []string, err error) {
	files, err := u.ListFiles(localPath)
	if err != nil {
		return nil, &models.TransferError{Err: err}
	}

	addr, err := HostAddr(creds.FTPURL)
	if err != nil {
		return nil, &models.TransferError{Err: err}
	}

	utils.Log.Debug("Opening FTP session to ", addr)
	conn, err := u.Dial(ctx, addr, u.Timeout)
	if err != nil {
		return nil, &models.TransferError{Err: err}
	}
	defer conn.Quit()

	if err := conn.Login(creds.FTPUser, creds.FTPPassword); err != nil {
		return nil, &models.TransferError{Err: err}
	}

	origin, err := conn.CurrentDir()
	if err != nil {
		return nil, &models.TransferError{Err: err}
	}
	if err := conn.ChangeDir(remoteDir); err != nil {
		return nil, &models.TransferError{Err: fmt.Errorf("cwd %s: %w", remoteDir, err)}
	}
	defer func() {
		if cerr := conn.ChangeDir(origin); cerr != nil && err == nil {
			err = &models.TransferError{Err: fmt.Errorf("cwd %s: %w", origin, cerr)}
		}
	}()

	if err := conn.Type(ftp.TransferTypeASCII); err != nil {
		return nil, &models.TransferError{Err: err}
	}

	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return uploaded, &models.TransferError{File: name, Err: err}
		}

		data, err := afero.ReadFile(u.Fs, filepath.Join(localPath, name))
		if err != nil {
			return uploaded, &models.TransferError{File: name, Err: err}
		}
		if err := conn.Stor(name, bytes.NewReader(ToNetASCII(data))); err != nil {
			return uploaded, &models.TransferError{File: name, Err: err}
		}
		utils.Log.Debug("Stored ", name)
		uploaded = append(uploaded, name)
	}

	return uploaded, nil
}

// ToNetASCII rewrites every line to end with CRLF, including a last line without a newline.
func ToNetASCII(data []byte) []byte {
	if len(data) == 0 {
		return data
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	return []byte(strings.ReplaceAll(text, "\n", "\r\n") + "\r\n")
}
