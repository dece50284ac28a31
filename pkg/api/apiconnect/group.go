package apiconnect

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/namansharma3007/Equi-share/pkg/api"
)

// GroupServiceName is the fully-qualified name of the GroupService service.
const GroupServiceName = "equishare.v1.GroupService"

// Procedure paths of GroupService.
const (
	GroupServiceCreateGroupProcedure      = "/equishare.v1.GroupService/CreateGroup"
	GroupServiceAddGroupMemberProcedure   = "/equishare.v1.GroupService/AddGroupMember"
	GroupServiceListGroupMembersProcedure = "/equishare.v1.GroupService/ListGroupMembers"
)

// GroupServiceClient is a client for the equishare.v1.GroupService service.
type GroupServiceClient interface {
	CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error)
	AddGroupMember(context.Context, *connect.Request[api.AddGroupMemberRequest]) (*connect.Response[api.AddGroupMemberResponse], error)
	ListGroupMembers(context.Context, *connect.Request[api.ListGroupMembersRequest]) (*connect.Response[api.ListGroupMembersResponse], error)
}

// NewGroupServiceClient constructs a client for the equishare.v1.GroupService service.
func NewGroupServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) GroupServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{connect.WithCodec(api.JSONCodec{})}, opts...)
	return &groupServiceClient{
		createGroup:      connect.NewClient[api.CreateGroupRequest, api.CreateGroupResponse](httpClient, baseURL+GroupServiceCreateGroupProcedure, opts...),
		addGroupMember:   connect.NewClient[api.AddGroupMemberRequest, api.AddGroupMemberResponse](httpClient, baseURL+GroupServiceAddGroupMemberProcedure, opts...),
		listGroupMembers: connect.NewClient[api.ListGroupMembersRequest, api.ListGroupMembersResponse](httpClient, baseURL+GroupServiceListGroupMembersProcedure, opts...),
	}
}

type groupServiceClient struct {
	createGroup      *connect.Client[api.CreateGroupRequest, api.CreateGroupResponse]
	addGroupMember   *connect.Client[api.AddGroupMemberRequest, api.AddGroupMemberResponse]
	listGroupMembers *connect.Client[api.ListGroupMembersRequest, api.ListGroupMembersResponse]
}

func (c *groupServiceClient) CreateGroup(ctx context.Context, req *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	return c.createGroup.CallUnary(ctx, req)
}

func (c *groupServiceClient) AddGroupMember(ctx context.Context, req *connect.Request[api.AddGroupMemberRequest]) (*connect.Response[api.AddGroupMemberResponse], error) {
	return c.addGroupMember.CallUnary(ctx, req)
}

func (c *groupServiceClient) ListGroupMembers(ctx context.Context, req *connect.Request[api.ListGroupMembersRequest]) (*connect.Response[api.ListGroupMembersResponse], error) {
	return c.listGroupMembers.CallUnary(ctx, req)
}

// GroupServiceHandler is an implementation of the equishare.v1.GroupService service.
type GroupServiceHandler interface {
	CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error)
	AddGroupMember(context.Context, *connect.Request[api.AddGroupMemberRequest]) (*connect.Response[api.AddGroupMemberResponse], error)
	ListGroupMembers(context.Context, *connect.Request[api.ListGroupMembersRequest]) (*connect.Response[api.ListGroupMembersResponse], error)
}

// NewGroupServiceHandler builds an HTTP handler from the service implementation.
func NewGroupServiceHandler(svc GroupServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(api.JSONCodec{})}, opts...)
	createGroup := connect.NewUnaryHandler(GroupServiceCreateGroupProcedure, svc.CreateGroup, opts...)
	addGroupMember := connect.NewUnaryHandler(GroupServiceAddGroupMemberProcedure, svc.AddGroupMember, opts...)
	listGroupMembers := connect.NewUnaryHandler(GroupServiceListGroupMembersProcedure, svc.ListGroupMembers, opts...)
	return "/equishare.v1.GroupService/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case GroupServiceCreateGroupProcedure:
			createGroup.ServeHTTP(w, r)
		case GroupServiceAddGroupMemberProcedure:
			addGroupMember.ServeHTTP(w, r)
		case GroupServiceListGroupMembersProcedure:
			listGroupMembers.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// UnimplementedGroupServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedGroupServiceHandler struct{}

func (UnimplementedGroupServiceHandler) CreateGroup(context.Context, *connect.Request[api.CreateGroupRequest]) (*connect.Response[api.CreateGroupResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("equishare.v1.GroupService.CreateGroup is not implemented"))
}

func (UnimplementedGroupServiceHandler) AddGroupMember(context.Context, *connect.Request[api.AddGroupMemberRequest]) (*connect.Response[api.AddGroupMemberResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("equishare.v1.GroupService.AddGroupMember is not implemented"))
}

func (UnimplementedGroupServiceHandler) ListGroupMembers(context.Context, *connect.Request[api.ListGroupMembersRequest]) (*connect.Response[api.ListGroupMembersResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("equishare.v1.GroupService.ListGroupMembers is not implemented"))
}
