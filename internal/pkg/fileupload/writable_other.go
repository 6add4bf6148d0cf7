//go:build !unix

package fileupload

import "io/fs"

func isWritable(_ string, info fs.FileInfo) bool {
	return info.Mode().Perm()&0o200 != 0
}
