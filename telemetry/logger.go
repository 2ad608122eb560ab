// Copyright 2026 Google LLC
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

package telemetry

import (
	"context"
	"os"
	"strings"

	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/global"
)

// Message content is not logged by default. Set the following env variable
// to enable logging of judge prompt/response content.
// EVALGATE_CAPTURE_MESSAGE_CONTENT=true
var elideMessageContent = !isEnvVarTrue("EVALGATE_CAPTURE_MESSAGE_CONTENT")

const elidedContent = "<elided>"

func logger() log.Logger {
	return global.GetLoggerProvider().Logger(scopeName)
}

// LogJudgeRequest emits one log record per judge prompt.
func LogJudgeRequest(ctx context.Context, model, dimension, prompt string) {
	record := log.Record{}
	record.SetEventName("evalgate.judge.request")
	record.SetBody(log.MapValue(
		log.String("model", model),
		log.String("dimension", dimension),
		log.KeyValue{Key: "content", Value: messageValue(prompt)},
	))
	logger().Emit(ctx, record)
}

// LogJudgeResponse emits one log record per judge verdict.
func LogJudgeResponse(ctx context.Context, model, dimension, response string) {
	record := log.Record{}
	record.SetEventName("evalgate.judge.response")
	record.SetBody(log.MapValue(
		log.String("model", model),
		log.String("dimension", dimension),
		log.KeyValue{Key: "content", Value: messageValue(response)},
	))
	logger().Emit(ctx, record)
}

func messageValue(content string) log.Value {
	if elideMessageContent {
		return log.StringValue(elidedContent)
	}
	return log.StringValue(content)
}

func isEnvVarTrue(name string) bool {
	val, ok := os.LookupEnv(name)
	if !ok {
		return false
	}
	val = strings.ToLower(val)
	return val == "true" || val == "1"
}
