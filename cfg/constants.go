// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cfg

// Recognized file-system.case-sensitivity values.
const (
	CaseSensitive            = "sensitive"
	CaseInsensitiveASCII     = "insensitive-ascii"
	CaseInsensitiveUnicode   = "insensitive-unicode"
)

// Recognized file-system.normalization values.
const (
	NormalizationNone = "none"
	NormalizationNFC  = "nfc"
	NormalizationNFD  = "nfd"
)

// Recognized file-system.attribute-views values, beyond the always-on
// "basic" view.
var SupportedAttributeViews = []string{"owner", "posix", "dos", "user"}
