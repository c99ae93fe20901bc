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

// Package config holds the sampler configuration.
//
// Values are resolved in order: built-in defaults, then an optional YAML
// file, then command-line flags that were explicitly set.
//
// Example file:
//
//	output: /var/lib/capmon/cheri_memory_anomalies.csv
//	pause: 1s
//	probeWindow: 1s
//	fetchTimeout: 5s
//	signature: capability fault
//	kernelLog:
//	  command: [dmesg, --ctime]
//	metricsAddress: 127.0.0.1:9464
package config
