package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
)

// ErrorsTestSuite 错误包测试套件
type ErrorsTestSuite struct {
	suite.Suite
}

// 测试创建新错误
func (suite *ErrorsTestSuite) TestNew() {
	err := New(ErrInvalidParam)
	suite.NotNil(err)
	suite.Equal(ErrInvalidParam, err.Code)
	suite.Equal("无效的参数", err.Message)
	suite.Empty(err.Details)

	err = New(ErrPlayerNotFound, "P9")
	suite.Equal("玩家不存在", err.Message)
	suite.Equal("P9", err.Details)

	err = New(ErrInvalidBoard, "起点缺失", "格子数: 3")
	suite.Equal("起点缺失; 格子数: 3", err.Details)
}

// 测试格式化错误创建
func (suite *ErrorsTestSuite) TestNewf() {
	err := Newf(ErrInvalidOption, "选项 %d 不在题目中", 42)
	suite.Equal(ErrInvalidOption, err.Code)
	suite.Equal("选项 42 不在题目中", err.Details)
}

// 测试错误包装
func (suite *ErrorsTestSuite) TestWrap() {
	originalErr := errors.New("连接被拒绝")
	wrappedErr := Wrap(originalErr, ErrProviderUnavailable)
	suite.Equal(ErrProviderUnavailable, wrappedErr.Code)
	suite.Equal("连接被拒绝", wrappedErr.Details)
	suite.Equal(originalErr, wrappedErr.Cause)
	suite.True(errors.Is(wrappedErr, originalErr))

	suite.Nil(Wrap(nil, ErrUnknown))

	// 包装已有的AppError，保留原始错误码
	appErr := New(ErrNotFound, "棋盘文件不存在")
	wrappedAppErr := Wrap(appErr, ErrConfigLoad, "加载棋盘")
	suite.Equal(ErrNotFound, wrappedAppErr.Code)
	suite.Contains(wrappedAppErr.Details, "加载棋盘")
}

// 测试格式化错误包装
func (suite *ErrorsTestSuite) TestWrapf() {
	originalErr := errors.New("yaml: line 3")
	wrappedErr := Wrapf(originalErr, ErrConfigParse, "解析 %s 失败", "board.yaml")
	suite.Equal(ErrConfigParse, wrappedErr.Code)
	suite.Equal("解析 board.yaml 失败", wrappedErr.Details)
}

// 测试错误码判断
func (suite *ErrorsTestSuite) TestIsAndGetCode() {
	err := New(ErrGatePending)
	suite.True(Is(err, ErrGatePending))
	suite.False(Is(err, ErrNotYourTurn))
	suite.False(Is(nil, ErrGatePending))
	suite.False(Is(errors.New("标准错误"), ErrUnknown))

	suite.Equal(ErrGatePending, GetCode(err))
	suite.Equal(ErrUnknown, GetCode(errors.New("标准错误")))
	suite.Equal(ErrorCode(0), GetCode(nil))
}

// 测试错误消息
func (suite *ErrorsTestSuite) TestError() {
	err := &AppError{Code: ErrNotFound, Message: "资源未找到"}
	suite.Equal("[1002] 资源未找到", err.Error())

	err.Details = "tile 99"
	suite.Equal("[1002] 资源未找到: tile 99", err.Error())
}

// 测试HTTP状态码映射
func (suite *ErrorsTestSuite) TestHTTPStatus() {
	testCases := []struct {
		code     ErrorCode
		expected int
	}{
		{ErrInvalidParam, 400},
		{ErrInvalidOption, 400},
		{ErrPlayerNotFound, 404},
		{ErrTimeout, 408},
		{ErrNotYourTurn, 409},
		{ErrGatePending, 409},
		{ErrDatabaseConnect, 503},
		{ErrUnknown, 500},
	}

	for _, tc := range testCases {
		err := New(tc.code)
		suite.Equal(tc.expected, err.HTTPStatus(), "错误码 %d 应该返回HTTP状态码 %d", tc.code, tc.expected)
	}
}

// 测试可重试判断
func (suite *ErrorsTestSuite) TestIsRetryable() {
	suite.True(IsRetryable(New(ErrProviderUnavailable)))
	suite.True(IsRetryable(New(ErrTimeout)))
	suite.False(IsRetryable(New(ErrInvalidOption)))
	suite.False(IsRetryable(nil))
}

// 测试调用栈捕获
func (suite *ErrorsTestSuite) TestStackCapture() {
	err := New(ErrUnknown)
	suite.NotEmpty(err.Stack)
	suite.NotEmpty(err.GetStack())
}

// 测试错误响应
func (suite *ErrorsTestSuite) TestErrorResponse() {
	err := New(ErrNoPendingQuestion)
	response := NewErrorResponse(err)

	suite.False(response.Success)
	suite.Equal(err, response.Error)
	suite.Greater(response.Timestamp, int64(0))
}

// 测试未知错误码
func (suite *ErrorsTestSuite) TestUnknownErrorCode() {
	err := New(ErrorCode(99999))
	suite.Equal(ErrorCode(99999), err.Code)
	suite.Equal("未知错误", err.Message)
}

func TestErrorsTestSuite(t *testing.T) {
	suite.Run(t, new(ErrorsTestSuite))
}
