/*
 * Copyright 2021-2022 by Nedim Sabic Sabic
 * https://www.fibratus.io
 * All Rights Reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package sys

import (
	"github.com/pkg/errors"
	errs "github.com/rabbitstack/handlenum/pkg/errors"
)

const (
	// SeDebugPrivilege is the name of the privilege used to debug programs.
	SeDebugPrivilege = "SeDebugPrivilege"
)

// Attribute bits for privileges.
const (
	// PrivilegeEnabled enables the privilege.
	PrivilegeEnabled uint32 = 0x00000002
)

// EnableTokenPrivilege enables the specified privilege in the access token of
// the current process. The token is always released before returning. If the
// token does not already contain the privilege it cannot be enabled.
func EnableTokenPrivilege(k Kernel, name string) error {
	h, err := k.OpenProcessToken(k.CurrentProcess(), TokenAdjustPrivileges|TokenQuery)
	if err != nil {
		return errs.System("OpenProcessToken", err)
	}
	token := Own(k, h)
	//nolint:errcheck
	defer token.Close()

	luid, err := k.LookupPrivilegeValue(name)
	if err != nil {
		return errors.Wrapf(errs.System("LookupPrivilegeValue", err), "couldn't resolve %q", name)
	}
	if err := k.AdjustTokenPrivileges(token.Handle(), luid, PrivilegeEnabled); err != nil {
		return errs.System("AdjustTokenPrivileges", err)
	}
	return nil
}

// EnableDebugPrivilege grants the debug privilege to the current process.
func EnableDebugPrivilege(k Kernel) error {
	return EnableTokenPrivilege(k, SeDebugPrivilege)
}
