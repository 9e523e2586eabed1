package model

import "errors"

var ErrorNoSender = errors.New("message has no sender")
var ErrorConversationNotFound = errors.New("conversation not found")
var ErrorSendFailed = errors.New("sending message failed")
