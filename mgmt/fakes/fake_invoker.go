package fakes

import (
	"sync"

	"github.com/cloudfoundry/policy-bundle-installer/mgmt"
)

// FakeInvoker answers requests from a queue of canned response documents or from InvokeStub.
type FakeInvoker struct {
	Requests []mgmt.Request

	Responses []string
	InvokeErr error

	InvokeStub func(request mgmt.Request) (mgmt.Response, error)

	lock sync.Mutex
}

func NewFakeInvoker() *FakeInvoker {
	return &FakeInvoker{}
}

func (i *FakeInvoker) AddResponse(content string) {
	i.lock.Lock()
	defer i.lock.Unlock()

	i.Responses = append(i.Responses, content)
}

func (i *FakeInvoker) Invoke(request mgmt.Request) (mgmt.Response, error) {
	i.lock.Lock()
	i.Requests = append(i.Requests, request)
	stub := i.InvokeStub
	i.lock.Unlock()

	if stub != nil {
		return stub(request)
	}

	if i.InvokeErr != nil {
		return mgmt.Response{}, i.InvokeErr
	}

	i.lock.Lock()
	defer i.lock.Unlock()

	if len(i.Responses) == 0 {
		panic("FakeInvoker: no response queued for " + string(request.Action))
	}

	content := i.Responses[0]
	i.Responses = i.Responses[1:]

	return mgmt.Response{StatusCode: 200, Document: Document(content)}, nil
}
