// Copyright (c) 2026 Modrinth Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package version

import (
	"crypto/sha1"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/modrinth/labrinth-go/internal/models"
)

// FileUploader streams a file's bytes to the external file host and
// returns the public URL it is reachable at, spec.md §4.7 step 2. A
// concrete implementation wraps whatever object-store SDK the deployment
// uses; this package only needs the narrow upload contract.
type FileUploader interface {
	Upload(projectSlug, versionNumber, filename string, r io.Reader, size int64) (url string, err error)
}

// HashedUpload is the result of streaming one multipart file part:
// its computed hashes, byte size, and the URL it now lives at.
type HashedUpload struct {
	URL      string
	Size     int64
	Filename string
	Hashes   []models.FileHash
}

// StreamAndHash copies r through sha1 and sha512 simultaneously while
// handing the same bytes to the uploader, so the file is hashed in one
// pass rather than read twice — the CPU-bound hashing happens inline
// with the I/O suspension point per spec.md §5's blocking-worker-pool
// guidance (the caller is expected to run this on that pool for large
// files, since sha512 of a multi-megabyte jar is not free).
func StreamAndHash(uploader FileUploader, projectSlug, versionNumber, filename string, r io.Reader, size int64) (HashedUpload, error) {
	sha1Hasher := sha1.New()
	sha512Hasher := sha512.New()
	tee := io.TeeReader(r, io.MultiWriter(sha1Hasher, sha512Hasher))

	url, err := uploader.Upload(projectSlug, versionNumber, filename, tee, size)
	if err != nil {
		return HashedUpload{}, fmt.Errorf("version: upload %q: %w", filename, err)
	}

	return HashedUpload{
		URL:      url,
		Size:     size,
		Filename: filename,
		Hashes: []models.FileHash{
			{Algorithm: models.HashSHA1, Hash: hex.EncodeToString(sha1Hasher.Sum(nil))},
			{Algorithm: models.HashSHA512, Hash: hex.EncodeToString(sha512Hasher.Sum(nil))},
		},
	}, nil
}
