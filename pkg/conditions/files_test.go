// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package conditions_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/siderolabs/gptflash/pkg/conditions"
	"github.com/siderolabs/gptflash/pkg/retry"
)

type FilesSuite struct {
	suite.Suite

	tempDir string
	sleeps  int
}

func (suite *FilesSuite) SetupTest() {
	suite.tempDir = suite.T().TempDir()
	suite.sleeps = 0
}

func (suite *FilesSuite) retryer(retries int) retry.Retryer {
	return retry.Constant(retries, retry.WithUnits(time.Millisecond), retry.WithSleep(func(d time.Duration) {
		suite.sleeps++

		time.Sleep(d)
	}))
}

func (suite *FilesSuite) createFile(name string) (path string) {
	path = filepath.Join(suite.tempDir, name)
	f, err := os.Create(path)
	suite.Require().NoError(err)

	suite.Require().NoError(f.Close())

	return path
}

func (suite *FilesSuite) TestString() {
	suite.Require().Equal("file \"abc.txt\" to exist", conditions.WaitForFileToExist("abc.txt", suite.retryer(1)).String())
}

func (suite *FilesSuite) TestExistsImmediately() {
	path := suite.createFile("w.txt")

	suite.Require().NoError(conditions.WaitForFileToExist(path, suite.retryer(20)).Wait(context.Background()))
	suite.Require().Zero(suite.sleeps)
}

func (suite *FilesSuite) TestSymlink() {
	target := suite.createFile("target")
	link := filepath.Join(suite.tempDir, "link")

	suite.Require().NoError(os.Symlink(target, link))
	suite.Require().NoError(conditions.WaitForFileToExist(link, suite.retryer(20)).Wait(context.Background()))

	suite.Require().NoError(os.Remove(target))

	err := conditions.WaitForFileToExist(link, suite.retryer(2)).Wait(context.Background())
	suite.Require().Error(err)
	suite.Require().True(retry.IsTimeout(err))
}

func (suite *FilesSuite) TestGivesUp() {
	path := filepath.Join(suite.tempDir, "never.txt")

	err := conditions.WaitForFileToExist(path, suite.retryer(20)).Wait(context.Background())
	suite.Require().Error(err)
	suite.Require().True(retry.IsTimeout(err))
	suite.Require().Contains(err.Error(), "never.txt")
	suite.Require().Equal(20, suite.sleeps)
}

func (suite *FilesSuite) TestAppearsLater() {
	path := filepath.Join(suite.tempDir, "late.txt")

	retryer := retry.Constant(20, retry.WithUnits(time.Millisecond), retry.WithSleep(func(d time.Duration) {
		suite.sleeps++

		if suite.sleeps == 3 {
			suite.createFile("late.txt")
		}
	}))

	suite.Require().NoError(conditions.WaitForFileToExist(path, retryer).Wait(context.Background()))
	suite.Require().Equal(3, suite.sleeps)
}

func (suite *FilesSuite) TestCanceled() {
	path := filepath.Join(suite.tempDir, "never.txt")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := conditions.WaitForFileToExist(path, suite.retryer(20)).Wait(ctx)
	suite.Require().EqualError(err, context.Canceled.Error())
	suite.Require().Zero(suite.sleeps)
}

func TestFilesSuite(t *testing.T) {
	suite.Run(t, new(FilesSuite))
}
