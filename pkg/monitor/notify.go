// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
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

package monitor

import (
	"log/slog"

	"github.com/coreos/go-systemd/v22/daemon"
)

// Service manager notification states.
const (
	NotifyReady    = daemon.SdNotifyReady
	NotifyWatchdog = daemon.SdNotifyWatchdog
	NotifyStopping = daemon.SdNotifyStopping
)

// Notifier reports lifecycle state to a service manager.
type Notifier interface {
	Notify(state string)
}

// SystemdNotifier sends sd_notify messages over NOTIFY_SOCKET.
// Outside systemd it does nothing.
type SystemdNotifier struct{}

// Notify sends state to systemd. Failures are logged and otherwise ignored.
func (SystemdNotifier) Notify(state string) {
	sent, err := daemon.SdNotify(false, state)
	if err != nil {
		slog.Debug("sd_notify failed", slog.String("state", state), slog.String("error", err.Error()))
		return
	}
	if sent {
		slog.Debug("sd_notify sent", slog.String("state", state))
	}
}

type nopNotifier struct{}

func (nopNotifier) Notify(string) {}
