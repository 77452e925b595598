/*
 * MIT License
 *
 * Copyright (c) 2026 Thierry Delhaise
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package boxd

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"os"
	"time"

	"github.com/tdelhaise/box/internal/boxid"
)

// keyMaterialSize is the length of the opaque key blob stored per
// identity file. The core never interprets this material — spec.md's
// non-goals exclude cryptographic identity generation and signature
// linking — it is stored only so a future transport layer has
// something stable to key off of.
const keyMaterialSize = 32

// identityFile is the on-disk shape of node.identity.json and
// client.identity.json.
type identityFile struct {
	UUID      string `json:"uuid"`
	KeyHex    string `json:"key"`
	CreatedAt int64  `json:"createdAt"`
}

// identityLinks is the on-disk shape of identity-links.json: a record
// that a node identity and a user identity were minted together, opaque
// beyond the two UUIDs it names.
type identityLinks struct {
	NodeUUID string `json:"nodeUUID"`
	UserUUID string `json:"userUUID"`
	LinkedAt int64  `json:"linkedAt"`
}

// Identity is the loaded/rotated identity material for one bootstrap,
// per spec.md §4.9 step 4.
type Identity struct {
	NodeUUID boxid.UUID
	UserUUID boxid.UUID
	NodeKey  []byte
	ClientKey []byte
}

// loadOrCreateIdentity loads node.identity.json, client.identity.json,
// and identity-links.json under keysDir, creating any that are absent
// or whose UUID no longer matches the configuration's repaired
// node/user UUIDs (a "rotate": a new opaque key is minted, the old file
// replaced). It never fails open on a corrupted file — corruption is
// treated the same as "absent" and the file is regenerated.
func loadOrCreateIdentity(keysDir string, nodeUUID, userUUID boxid.UUID) (Identity, error) {
	if err := os.MkdirAll(keysDir, 0700); err != nil {
		return Identity{}, err
	}

	nodeKey, err := loadOrRotateKey(nodePath(keysDir), nodeUUID)
	if err != nil {
		return Identity{}, err
	}
	clientKey, err := loadOrRotateKey(clientPath(keysDir), userUUID)
	if err != nil {
		return Identity{}, err
	}
	if err := ensureLinks(linksPath(keysDir), nodeUUID, userUUID); err != nil {
		return Identity{}, err
	}

	return Identity{NodeUUID: nodeUUID, UserUUID: userUUID, NodeKey: nodeKey, ClientKey: clientKey}, nil
}

func nodePath(dir string) string   { return dir + "/node.identity.json" }
func clientPath(dir string) string { return dir + "/client.identity.json" }
func linksPath(dir string) string  { return dir + "/identity-links.json" }

func loadOrRotateKey(path string, want boxid.UUID) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err == nil {
		var f identityFile
		if jsonErr := json.Unmarshal(data, &f); jsonErr == nil {
			if f.UUID == want.String() {
				if key, hexErr := hex.DecodeString(f.KeyHex); hexErr == nil && len(key) == keyMaterialSize {
					return key, nil
				}
			}
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	key := make([]byte, keyMaterialSize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, err
	}

	f := identityFile{UUID: want.String(), KeyHex: hex.EncodeToString(key), CreatedAt: time.Now().Unix()}
	data, err = json.MarshalIndent(f, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return nil, err
	}
	return key, nil
}

func ensureLinks(path string, nodeUUID, userUUID boxid.UUID) error {
	data, err := os.ReadFile(path)
	if err == nil {
		var l identityLinks
		if jsonErr := json.Unmarshal(data, &l); jsonErr == nil {
			if l.NodeUUID == nodeUUID.String() && l.UserUUID == userUUID.String() {
				return nil
			}
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	l := identityLinks{NodeUUID: nodeUUID.String(), UserUUID: userUUID.String(), LinkedAt: time.Now().Unix()}
	data, err = json.MarshalIndent(l, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
