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

package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

////////////////////////////////////////////////////////////////////////
// Boilerplate
////////////////////////////////////////////////////////////////////////

type UtilTest struct {
	suite.Suite
}

func TestUtilSuite(t *testing.T) {
	suite.Run(t, new(UtilTest))
}

////////////////////////////////////////////////////////////////////////
// Tests
////////////////////////////////////////////////////////////////////////

func (ts *UtilTest) TestResolveEmptyPath() {
	resolvedPath, err := GetResolvedPath("")

	assert.NoError(ts.T(), err)
	assert.Equal(ts.T(), "", resolvedPath)
}

func (ts *UtilTest) TestResolveAbsolutePath() {
	resolvedPath, err := GetResolvedPath("/var/log/drivestream.log")

	assert.NoError(ts.T(), err)
	assert.Equal(ts.T(), "/var/log/drivestream.log", resolvedPath)
}

func (ts *UtilTest) TestResolveWhenWorkDirEnvNotSetAndFilePathStartsWithTilda() {
	resolvedPath, err := GetResolvedPath("~/test.txt")

	assert.NoError(ts.T(), err)
	homeDir, err := os.UserHomeDir()
	assert.NoError(ts.T(), err)
	assert.Equal(ts.T(), filepath.Join(homeDir, "test.txt"), resolvedPath)
}

func (ts *UtilTest) TestResolveWhenWorkDirEnvNotSetAndFilePathStartsWithDot() {
	resolvedPath, err := GetResolvedPath("./test.txt")

	assert.NoError(ts.T(), err)
	currentWorkingDir, err := os.Getwd()
	assert.NoError(ts.T(), err)
	assert.Equal(ts.T(), filepath.Join(currentWorkingDir, "./test.txt"), resolvedPath)
}

func (ts *UtilTest) TestResolveWhenWorkDirEnvNotSetAndFilePathStartsWithDoubleDot() {
	resolvedPath, err := GetResolvedPath("../test.txt")

	assert.NoError(ts.T(), err)
	currentWorkingDir, err := os.Getwd()
	assert.NoError(ts.T(), err)
	assert.Equal(ts.T(), filepath.Join(currentWorkingDir, "../test.txt"), resolvedPath)
}

func (ts *UtilTest) TestResolveWhenWorkDirEnvSet() {
	ts.T().Setenv(WorkDirEnv, "/var/generic/drivestream")

	resolvedPath, err := GetResolvedPath("logs/test.txt")

	assert.NoError(ts.T(), err)
	assert.Equal(ts.T(), "/var/generic/drivestream/logs/test.txt", resolvedPath)
}
