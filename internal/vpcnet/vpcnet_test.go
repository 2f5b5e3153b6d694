package vpcnet_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/smithy-go"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap/zaptest"

	"github.com/DaveStutler/serverless-e-commerce/internal/vpcnet"
)

// fakeEC2 is an in-memory EC2 control plane. Describe calls for a specific
// resource report it in its terminal state, so the SDK waiters return on
// their first attempt.
type fakeEC2 struct {
	calls []string
	errs  map[string]error

	azs []string
	seq int

	createVpcInput  *ec2.CreateVpcInput
	modifyVpcInputs []*ec2.ModifyVpcAttributeInput
	subnetInputs    []*ec2.CreateSubnetInput
	routeInputs     []*ec2.CreateRouteInput
	associateInputs []*ec2.AssociateRouteTableInput
	sgInput         *ec2.CreateSecurityGroupInput
	ingressInput    *ec2.AuthorizeSecurityGroupIngressInput
	natInput        *ec2.CreateNatGatewayInput
	tags            map[string][]ec2types.Tag

	vpcs             []ec2types.Vpc
	vpcFilters       []ec2types.Filter
	natGateways      []ec2types.NatGateway
	routeTables      []ec2types.RouteTable
	internetGateways []ec2types.InternetGateway
	subnets          []ec2types.Subnet
	securityGroups   []ec2types.SecurityGroup

	deletedNats map[string]bool
	released    []string
}

func newFakeEC2() *fakeEC2 {
	return &fakeEC2{
		azs:         []string{"us-east-1a", "us-east-1b"},
		errs:        map[string]error{},
		tags:        map[string][]ec2types.Tag{},
		deletedNats: map[string]bool{},
	}
}

func (f *fakeEC2) id(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%04d", prefix, f.seq)
}

func (f *fakeEC2) record(op string) error {
	f.calls = append(f.calls, op)
	return f.errs[op]
}

func (f *fakeEC2) CreateVpc(_ context.Context, params *ec2.CreateVpcInput, _ ...func(*ec2.Options)) (*ec2.CreateVpcOutput, error) {
	if err := f.record("CreateVpc"); err != nil {
		return nil, err
	}
	f.createVpcInput = params
	return &ec2.CreateVpcOutput{Vpc: &ec2types.Vpc{VpcId: aws.String(f.id("vpc"))}}, nil
}

func (f *fakeEC2) ModifyVpcAttribute(_ context.Context, params *ec2.ModifyVpcAttributeInput, _ ...func(*ec2.Options)) (*ec2.ModifyVpcAttributeOutput, error) {
	if err := f.record("ModifyVpcAttribute"); err != nil {
		return nil, err
	}
	f.modifyVpcInputs = append(f.modifyVpcInputs, params)
	return &ec2.ModifyVpcAttributeOutput{}, nil
}

func (f *fakeEC2) DeleteVpc(_ context.Context, _ *ec2.DeleteVpcInput, _ ...func(*ec2.Options)) (*ec2.DeleteVpcOutput, error) {
	if err := f.record("DeleteVpc"); err != nil {
		return nil, err
	}
	return &ec2.DeleteVpcOutput{}, nil
}

func (f *fakeEC2) DescribeVpcs(_ context.Context, params *ec2.DescribeVpcsInput, _ ...func(*ec2.Options)) (*ec2.DescribeVpcsOutput, error) {
	if err := f.record("DescribeVpcs"); err != nil {
		return nil, err
	}
	if len(params.VpcIds) > 0 {
		return &ec2.DescribeVpcsOutput{Vpcs: []ec2types.Vpc{{
			VpcId: aws.String(params.VpcIds[0]),
			State: ec2types.VpcStateAvailable,
		}}}, nil
	}
	f.vpcFilters = params.Filters
	return &ec2.DescribeVpcsOutput{Vpcs: f.vpcs}, nil
}

func (f *fakeEC2) DescribeAvailabilityZones(_ context.Context, _ *ec2.DescribeAvailabilityZonesInput, _ ...func(*ec2.Options)) (*ec2.DescribeAvailabilityZonesOutput, error) {
	if err := f.record("DescribeAvailabilityZones"); err != nil {
		return nil, err
	}
	var zones []ec2types.AvailabilityZone
	for _, name := range f.azs {
		zones = append(zones, ec2types.AvailabilityZone{ZoneName: aws.String(name)})
	}
	return &ec2.DescribeAvailabilityZonesOutput{AvailabilityZones: zones}, nil
}

func (f *fakeEC2) CreateSubnet(_ context.Context, params *ec2.CreateSubnetInput, _ ...func(*ec2.Options)) (*ec2.CreateSubnetOutput, error) {
	if err := f.record("CreateSubnet"); err != nil {
		return nil, err
	}
	f.subnetInputs = append(f.subnetInputs, params)
	return &ec2.CreateSubnetOutput{Subnet: &ec2types.Subnet{SubnetId: aws.String(f.id("subnet"))}}, nil
}

func (f *fakeEC2) DeleteSubnet(_ context.Context, _ *ec2.DeleteSubnetInput, _ ...func(*ec2.Options)) (*ec2.DeleteSubnetOutput, error) {
	if err := f.record("DeleteSubnet"); err != nil {
		return nil, err
	}
	return &ec2.DeleteSubnetOutput{}, nil
}

func (f *fakeEC2) DescribeSubnets(_ context.Context, params *ec2.DescribeSubnetsInput, _ ...func(*ec2.Options)) (*ec2.DescribeSubnetsOutput, error) {
	if err := f.record("DescribeSubnets"); err != nil {
		return nil, err
	}
	if len(params.SubnetIds) > 0 {
		return &ec2.DescribeSubnetsOutput{Subnets: []ec2types.Subnet{{
			SubnetId: aws.String(params.SubnetIds[0]),
			State:    ec2types.SubnetStateAvailable,
		}}}, nil
	}
	return &ec2.DescribeSubnetsOutput{Subnets: f.subnets}, nil
}

func (f *fakeEC2) CreateInternetGateway(_ context.Context, _ *ec2.CreateInternetGatewayInput, _ ...func(*ec2.Options)) (*ec2.CreateInternetGatewayOutput, error) {
	if err := f.record("CreateInternetGateway"); err != nil {
		return nil, err
	}
	return &ec2.CreateInternetGatewayOutput{
		InternetGateway: &ec2types.InternetGateway{InternetGatewayId: aws.String(f.id("igw"))},
	}, nil
}

func (f *fakeEC2) AttachInternetGateway(_ context.Context, _ *ec2.AttachInternetGatewayInput, _ ...func(*ec2.Options)) (*ec2.AttachInternetGatewayOutput, error) {
	if err := f.record("AttachInternetGateway"); err != nil {
		return nil, err
	}
	return &ec2.AttachInternetGatewayOutput{}, nil
}

func (f *fakeEC2) DetachInternetGateway(_ context.Context, _ *ec2.DetachInternetGatewayInput, _ ...func(*ec2.Options)) (*ec2.DetachInternetGatewayOutput, error) {
	if err := f.record("DetachInternetGateway"); err != nil {
		return nil, err
	}
	return &ec2.DetachInternetGatewayOutput{}, nil
}

func (f *fakeEC2) DeleteInternetGateway(_ context.Context, _ *ec2.DeleteInternetGatewayInput, _ ...func(*ec2.Options)) (*ec2.DeleteInternetGatewayOutput, error) {
	if err := f.record("DeleteInternetGateway"); err != nil {
		return nil, err
	}
	return &ec2.DeleteInternetGatewayOutput{}, nil
}

func (f *fakeEC2) DescribeInternetGateways(_ context.Context, _ *ec2.DescribeInternetGatewaysInput, _ ...func(*ec2.Options)) (*ec2.DescribeInternetGatewaysOutput, error) {
	if err := f.record("DescribeInternetGateways"); err != nil {
		return nil, err
	}
	return &ec2.DescribeInternetGatewaysOutput{InternetGateways: f.internetGateways}, nil
}

func (f *fakeEC2) CreateRouteTable(_ context.Context, _ *ec2.CreateRouteTableInput, _ ...func(*ec2.Options)) (*ec2.CreateRouteTableOutput, error) {
	if err := f.record("CreateRouteTable"); err != nil {
		return nil, err
	}
	return &ec2.CreateRouteTableOutput{
		RouteTable: &ec2types.RouteTable{RouteTableId: aws.String(f.id("rtb"))},
	}, nil
}

func (f *fakeEC2) DeleteRouteTable(_ context.Context, _ *ec2.DeleteRouteTableInput, _ ...func(*ec2.Options)) (*ec2.DeleteRouteTableOutput, error) {
	if err := f.record("DeleteRouteTable"); err != nil {
		return nil, err
	}
	return &ec2.DeleteRouteTableOutput{}, nil
}

func (f *fakeEC2) DescribeRouteTables(_ context.Context, _ *ec2.DescribeRouteTablesInput, _ ...func(*ec2.Options)) (*ec2.DescribeRouteTablesOutput, error) {
	if err := f.record("DescribeRouteTables"); err != nil {
		return nil, err
	}
	return &ec2.DescribeRouteTablesOutput{RouteTables: f.routeTables}, nil
}

func (f *fakeEC2) AssociateRouteTable(_ context.Context, params *ec2.AssociateRouteTableInput, _ ...func(*ec2.Options)) (*ec2.AssociateRouteTableOutput, error) {
	if err := f.record("AssociateRouteTable"); err != nil {
		return nil, err
	}
	f.associateInputs = append(f.associateInputs, params)
	return &ec2.AssociateRouteTableOutput{AssociationId: aws.String(f.id("rtbassoc"))}, nil
}

func (f *fakeEC2) DisassociateRouteTable(_ context.Context, _ *ec2.DisassociateRouteTableInput, _ ...func(*ec2.Options)) (*ec2.DisassociateRouteTableOutput, error) {
	if err := f.record("DisassociateRouteTable"); err != nil {
		return nil, err
	}
	return &ec2.DisassociateRouteTableOutput{}, nil
}

func (f *fakeEC2) CreateRoute(_ context.Context, params *ec2.CreateRouteInput, _ ...func(*ec2.Options)) (*ec2.CreateRouteOutput, error) {
	if err := f.record("CreateRoute"); err != nil {
		return nil, err
	}
	f.routeInputs = append(f.routeInputs, params)
	return &ec2.CreateRouteOutput{Return: aws.Bool(true)}, nil
}

func (f *fakeEC2) AllocateAddress(_ context.Context, _ *ec2.AllocateAddressInput, _ ...func(*ec2.Options)) (*ec2.AllocateAddressOutput, error) {
	if err := f.record("AllocateAddress"); err != nil {
		return nil, err
	}
	return &ec2.AllocateAddressOutput{AllocationId: aws.String(f.id("eipalloc"))}, nil
}

func (f *fakeEC2) ReleaseAddress(_ context.Context, params *ec2.ReleaseAddressInput, _ ...func(*ec2.Options)) (*ec2.ReleaseAddressOutput, error) {
	if err := f.record("ReleaseAddress"); err != nil {
		return nil, err
	}
	f.released = append(f.released, aws.ToString(params.AllocationId))
	return &ec2.ReleaseAddressOutput{}, nil
}

func (f *fakeEC2) CreateNatGateway(_ context.Context, params *ec2.CreateNatGatewayInput, _ ...func(*ec2.Options)) (*ec2.CreateNatGatewayOutput, error) {
	if err := f.record("CreateNatGateway"); err != nil {
		return nil, err
	}
	f.natInput = params
	return &ec2.CreateNatGatewayOutput{
		NatGateway: &ec2types.NatGateway{NatGatewayId: aws.String(f.id("nat"))},
	}, nil
}

func (f *fakeEC2) DeleteNatGateway(_ context.Context, params *ec2.DeleteNatGatewayInput, _ ...func(*ec2.Options)) (*ec2.DeleteNatGatewayOutput, error) {
	if err := f.record("DeleteNatGateway"); err != nil {
		return nil, err
	}
	f.deletedNats[aws.ToString(params.NatGatewayId)] = true
	return &ec2.DeleteNatGatewayOutput{}, nil
}

func (f *fakeEC2) DescribeNatGateways(_ context.Context, params *ec2.DescribeNatGatewaysInput, _ ...func(*ec2.Options)) (*ec2.DescribeNatGatewaysOutput, error) {
	if err := f.record("DescribeNatGateways"); err != nil {
		return nil, err
	}
	if len(params.NatGatewayIds) > 0 {
		natID := params.NatGatewayIds[0]
		state := ec2types.NatGatewayStateAvailable
		if f.deletedNats[natID] {
			state = ec2types.NatGatewayStateDeleted
		}
		return &ec2.DescribeNatGatewaysOutput{NatGateways: []ec2types.NatGateway{{
			NatGatewayId: aws.String(natID),
			State:        state,
		}}}, nil
	}
	return &ec2.DescribeNatGatewaysOutput{NatGateways: f.natGateways}, nil
}

func (f *fakeEC2) CreateSecurityGroup(_ context.Context, params *ec2.CreateSecurityGroupInput, _ ...func(*ec2.Options)) (*ec2.CreateSecurityGroupOutput, error) {
	if err := f.record("CreateSecurityGroup"); err != nil {
		return nil, err
	}
	f.sgInput = params
	return &ec2.CreateSecurityGroupOutput{GroupId: aws.String(f.id("sg"))}, nil
}

func (f *fakeEC2) DeleteSecurityGroup(_ context.Context, _ *ec2.DeleteSecurityGroupInput, _ ...func(*ec2.Options)) (*ec2.DeleteSecurityGroupOutput, error) {
	if err := f.record("DeleteSecurityGroup"); err != nil {
		return nil, err
	}
	return &ec2.DeleteSecurityGroupOutput{}, nil
}

func (f *fakeEC2) DescribeSecurityGroups(_ context.Context, _ *ec2.DescribeSecurityGroupsInput, _ ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupsOutput, error) {
	if err := f.record("DescribeSecurityGroups"); err != nil {
		return nil, err
	}
	return &ec2.DescribeSecurityGroupsOutput{SecurityGroups: f.securityGroups}, nil
}

func (f *fakeEC2) AuthorizeSecurityGroupIngress(_ context.Context, params *ec2.AuthorizeSecurityGroupIngressInput, _ ...func(*ec2.Options)) (*ec2.AuthorizeSecurityGroupIngressOutput, error) {
	if err := f.record("AuthorizeSecurityGroupIngress"); err != nil {
		return nil, err
	}
	f.ingressInput = params
	return &ec2.AuthorizeSecurityGroupIngressOutput{}, nil
}

func (f *fakeEC2) CreateTags(_ context.Context, params *ec2.CreateTagsInput, _ ...func(*ec2.Options)) (*ec2.CreateTagsOutput, error) {
	if err := f.record("CreateTags"); err != nil {
		return nil, err
	}
	for _, res := range params.Resources {
		f.tags[res] = append(f.tags[res], params.Tags...)
	}
	return &ec2.CreateTagsOutput{}, nil
}

func tagValue(tags []ec2types.Tag, key string) string {
	for _, t := range tags {
		if aws.ToString(t.Key) == key {
			return aws.ToString(t.Value)
		}
	}
	return ""
}

func indexOf(calls []string, op string) int {
	for i, c := range calls {
		if c == op {
			return i
		}
	}
	return -1
}

func notFoundErr(code string) error {
	return &smithy.GenericAPIError{Code: code, Message: "gone"}
}

func TestProvisionCreatesFullNetwork(t *testing.T) {
	t.Parallel()

	fake := newFakeEC2()
	p := vpcnet.New(fake, zaptest.NewLogger(t))

	network, err := p.Provision(context.Background(), "ecommerce-app")
	if err != nil {
		t.Fatalf("Provision: %v", err)
	}

	if got := aws.ToString(fake.createVpcInput.CidrBlock); got != "10.0.0.0/16" {
		t.Errorf("VPC CIDR = %s, want 10.0.0.0/16", got)
	}
	if len(fake.modifyVpcInputs) != 2 {
		t.Errorf("ModifyVpcAttribute called %d times, want 2 (DNS support + hostnames)", len(fake.modifyVpcInputs))
	}

	wantSubnets := []struct {
		cidr, zone string
	}{
		{"10.0.1.0/24", "us-east-1a"},
		{"10.0.2.0/24", "us-east-1a"},
		{"10.0.3.0/24", "us-east-1b"},
		{"10.0.4.0/24", "us-east-1b"},
	}
	if len(fake.subnetInputs) != len(wantSubnets) {
		t.Fatalf("created %d subnets, want %d", len(fake.subnetInputs), len(wantSubnets))
	}
	for i, want := range wantSubnets {
		got := fake.subnetInputs[i]
		if aws.ToString(got.CidrBlock) != want.cidr || aws.ToString(got.AvailabilityZone) != want.zone {
			t.Errorf("subnet[%d] = %s in %s, want %s in %s",
				i, aws.ToString(got.CidrBlock), aws.ToString(got.AvailabilityZone), want.cidr, want.zone)
		}
	}
	if len(network.PublicSubnetIDs) != 2 || len(network.PrivateSubnetIDs) != 2 {
		t.Errorf("got %d public / %d private subnets, want 2/2",
			len(network.PublicSubnetIDs), len(network.PrivateSubnetIDs))
	}

	if got := aws.ToString(fake.natInput.SubnetId); got != network.PublicSubnetIDs[0] {
		t.Errorf("NAT gateway in %s, want first public subnet %s", got, network.PublicSubnetIDs[0])
	}
	if fake.natInput.AllocationId == nil {
		t.Error("NAT gateway created without an elastic IP allocation")
	}

	var igwRoutes, natRoutes int
	for _, route := range fake.routeInputs {
		if aws.ToString(route.DestinationCidrBlock) != "0.0.0.0/0" {
			t.Errorf("route destination = %s, want 0.0.0.0/0", aws.ToString(route.DestinationCidrBlock))
		}
		if route.GatewayId != nil {
			igwRoutes++
		}
		if route.NatGatewayId != nil {
			natRoutes++
		}
	}
	if igwRoutes != 2 || natRoutes != 2 {
		t.Errorf("got %d IGW routes / %d NAT routes, want 2/2", igwRoutes, natRoutes)
	}

	perm := fake.ingressInput.IpPermissions[0]
	if aws.ToString(perm.IpProtocol) != "tcp" || aws.ToInt32(perm.FromPort) != 5432 || aws.ToInt32(perm.ToPort) != 5432 {
		t.Errorf("ingress = %s %d-%d, want tcp 5432-5432",
			aws.ToString(perm.IpProtocol), aws.ToInt32(perm.FromPort), aws.ToInt32(perm.ToPort))
	}
	if got := aws.ToString(perm.IpRanges[0].CidrIp); got != "10.0.0.0/16" {
		t.Errorf("ingress CIDR = %s, want 10.0.0.0/16", got)
	}

	vpcTags := fake.tags[network.VPCID]
	if got := tagValue(vpcTags, "Name"); got != "ecommerce-app-vpc" {
		t.Errorf("VPC Name tag = %s, want ecommerce-app-vpc", got)
	}
	if got := tagValue(vpcTags, "CreatedBy"); got != vpcnet.CreatedByValue {
		t.Errorf("VPC CreatedBy tag = %s, want %s", got, vpcnet.CreatedByValue)
	}
	if got := tagValue(vpcTags, "Project"); got != "ecommerce-app" {
		t.Errorf("VPC Project tag = %s, want ecommerce-app", got)
	}

	if got := tagValue(fake.tags[network.PublicSubnetIDs[0]], "Type"); got != "public" {
		t.Errorf("public subnet Type tag = %s, want public", got)
	}
	if got := tagValue(fake.tags[network.PrivateSubnetIDs[0]], "Type"); got != "private" {
		t.Errorf("private subnet Type tag = %s, want private", got)
	}
	if got := tagValue(fake.tags[network.SecurityGroupID], "Name"); got != "ecommerce-app-sg" {
		t.Errorf("security group Name tag = %s, want ecommerce-app-sg", got)
	}
}

func TestProvisionUsesTwoZones(t *testing.T) {
	t.Parallel()

	fake := newFakeEC2()
	fake.azs = []string{"us-east-1a", "us-east-1b", "us-east-1c"}
	p := vpcnet.New(fake, zaptest.NewLogger(t))

	if _, err := p.Provision(context.Background(), "ecommerce-app"); err != nil {
		t.Fatalf("Provision: %v", err)
	}
	if len(fake.subnetInputs) != 4 {
		t.Errorf("created %d subnets, want 4 (two zones only)", len(fake.subnetInputs))
	}
}

func TestProvisionFailsWithOneZone(t *testing.T) {
	t.Parallel()

	fake := newFakeEC2()
	fake.azs = []string{"us-east-1a"}
	p := vpcnet.New(fake, zaptest.NewLogger(t))

	if _, err := p.Provision(context.Background(), "ecommerce-app"); err == nil {
		t.Fatal("expected error with a single availability zone")
	}
}

func TestCreateSecurityGroupReusesExisting(t *testing.T) {
	t.Parallel()

	fake := newFakeEC2()
	fake.errs["CreateSecurityGroup"] = notFoundErr("InvalidGroup.Duplicate")
	fake.errs["AuthorizeSecurityGroupIngress"] = notFoundErr("InvalidPermission.Duplicate")
	fake.securityGroups = []ec2types.SecurityGroup{{
		GroupId:   aws.String("sg-existing"),
		GroupName: aws.String("ecommerce-app-sg"),
	}}
	p := vpcnet.New(fake, zaptest.NewLogger(t))

	groupID, err := p.CreateSecurityGroup(context.Background(), "vpc-1", "ecommerce-app")
	if err != nil {
		t.Fatalf("CreateSecurityGroup: %v", err)
	}
	if groupID != "sg-existing" {
		t.Errorf("groupID = %s, want sg-existing", groupID)
	}
}

func teardownFake() *fakeEC2 {
	fake := newFakeEC2()
	fake.natGateways = []ec2types.NatGateway{{
		NatGatewayId: aws.String("nat-1"),
		State:        ec2types.NatGatewayStateAvailable,
		NatGatewayAddresses: []ec2types.NatGatewayAddress{
			{AllocationId: aws.String("eipalloc-1")},
		},
	}}
	fake.routeTables = []ec2types.RouteTable{
		{
			RouteTableId: aws.String("rtb-main"),
			Associations: []ec2types.RouteTableAssociation{{Main: aws.Bool(true)}},
		},
		{
			RouteTableId: aws.String("rtb-public"),
			Associations: []ec2types.RouteTableAssociation{{
				RouteTableAssociationId: aws.String("rtbassoc-1"),
				SubnetId:                aws.String("subnet-1"),
			}},
		},
	}
	fake.internetGateways = []ec2types.InternetGateway{{InternetGatewayId: aws.String("igw-1")}}
	fake.subnets = []ec2types.Subnet{
		{SubnetId: aws.String("subnet-1")},
		{SubnetId: aws.String("subnet-2")},
	}
	fake.securityGroups = []ec2types.SecurityGroup{
		{GroupId: aws.String("sg-default"), GroupName: aws.String("default")},
		{GroupId: aws.String("sg-app"), GroupName: aws.String("ecommerce-app-sg")},
	}
	return fake
}

func TestTeardownOrder(t *testing.T) {
	t.Parallel()

	fake := teardownFake()
	p := vpcnet.New(fake, zaptest.NewLogger(t))

	if err := p.Teardown(context.Background(), "vpc-1"); err != nil {
		t.Fatalf("Teardown: %v", err)
	}

	order := []string{
		"DeleteNatGateway",
		"ReleaseAddress",
		"DisassociateRouteTable",
		"DeleteRouteTable",
		"DetachInternetGateway",
		"DeleteInternetGateway",
		"DeleteSubnet",
		"DeleteSecurityGroup",
		"DeleteVpc",
	}
	prev := -1
	for _, op := range order {
		idx := indexOf(fake.calls, op)
		if idx < 0 {
			t.Fatalf("%s was never called; calls: %v", op, fake.calls)
		}
		if idx < prev {
			t.Errorf("%s ran out of order; calls: %v", op, fake.calls)
		}
		prev = idx
	}

	if len(fake.released) != 1 || fake.released[0] != "eipalloc-1" {
		t.Errorf("released addresses = %v, want [eipalloc-1]", fake.released)
	}

	deletes := 0
	for _, c := range fake.calls {
		if c == "DeleteRouteTable" {
			deletes++
		}
	}
	if deletes != 1 {
		t.Errorf("DeleteRouteTable called %d times, want 1 (main table skipped)", deletes)
	}

	sgDeletes := 0
	for _, c := range fake.calls {
		if c == "DeleteSecurityGroup" {
			sgDeletes++
		}
	}
	if sgDeletes != 1 {
		t.Errorf("DeleteSecurityGroup called %d times, want 1 (default group skipped)", sgDeletes)
	}
}

func TestTeardownToleratesMissingResources(t *testing.T) {
	t.Parallel()

	fake := teardownFake()
	fake.errs["DeleteSubnet"] = notFoundErr("InvalidSubnetID.NotFound")
	fake.errs["DeleteInternetGateway"] = notFoundErr("InvalidInternetGatewayID.NotFound")
	fake.errs["DeleteSecurityGroup"] = notFoundErr("InvalidGroup.NotFound")
	fake.errs["DeleteVpc"] = notFoundErr("InvalidVpcID.NotFound")
	fake.errs["DeleteNatGateway"] = notFoundErr("NatGatewayNotFound")
	p := vpcnet.New(fake, zaptest.NewLogger(t))

	if err := p.Teardown(context.Background(), "vpc-1"); err != nil {
		t.Fatalf("Teardown should tolerate missing resources, got: %v", err)
	}
}

func TestTeardownContinuesAfterFailure(t *testing.T) {
	t.Parallel()

	fake := teardownFake()
	fake.errs["DeleteInternetGateway"] = notFoundErr("DependencyViolation")
	p := vpcnet.New(fake, zaptest.NewLogger(t))

	err := p.Teardown(context.Background(), "vpc-1")
	if err == nil {
		t.Fatal("expected the dependency violation to surface")
	}
	if indexOf(fake.calls, "DeleteVpc") < 0 {
		t.Error("later steps should still run after a failure")
	}
}

func TestTeardownProjectSelectsByTag(t *testing.T) {
	t.Parallel()

	fake := teardownFake()
	fake.vpcs = []ec2types.Vpc{{VpcId: aws.String("vpc-owned")}}
	p := vpcnet.New(fake, zaptest.NewLogger(t))

	if err := p.TeardownProject(context.Background(), "ecommerce-app"); err != nil {
		t.Fatalf("TeardownProject: %v", err)
	}

	var gotProject, gotCreatedBy bool
	for _, f := range fake.vpcFilters {
		switch aws.ToString(f.Name) {
		case "tag:Project":
			gotProject = f.Values[0] == "ecommerce-app"
		case "tag:CreatedBy":
			gotCreatedBy = f.Values[0] == vpcnet.CreatedByValue
		}
	}
	if !gotProject || !gotCreatedBy {
		t.Errorf("VPC selection filters = %v, want tag:Project and tag:CreatedBy", fake.vpcFilters)
	}
	if indexOf(fake.calls, "DeleteVpc") < 0 {
		t.Error("tagged VPC was not torn down")
	}
}

func TestDiscover(t *testing.T) {
	t.Parallel()

	fake := newFakeEC2()
	fake.vpcs = []ec2types.Vpc{{VpcId: aws.String("vpc-owned")}}
	fake.subnets = []ec2types.Subnet{
		{SubnetId: aws.String("subnet-pub"), Tags: []ec2types.Tag{
			{Key: aws.String("Type"), Value: aws.String("public")},
		}},
		{SubnetId: aws.String("subnet-priv"), Tags: []ec2types.Tag{
			{Key: aws.String("Type"), Value: aws.String("private")},
		}},
	}
	fake.securityGroups = []ec2types.SecurityGroup{{
		GroupId:   aws.String("sg-app"),
		GroupName: aws.String("ecommerce-app-sg"),
	}}
	p := vpcnet.New(fake, zaptest.NewLogger(t))

	disc, err := p.Discover(context.Background(), "ecommerce-app")
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if disc.VPCID != "vpc-owned" {
		t.Errorf("VPCID = %s, want vpc-owned", disc.VPCID)
	}
	if len(disc.SubnetIDs) != 2 {
		t.Errorf("found %d subnets, want 2", len(disc.SubnetIDs))
	}
	if len(disc.PrivateSubnetIDs) != 1 || disc.PrivateSubnetIDs[0] != "subnet-priv" {
		t.Errorf("private subnets = %v, want [subnet-priv]", disc.PrivateSubnetIDs)
	}
	if disc.SecurityGroupID != "sg-app" {
		t.Errorf("SecurityGroupID = %s, want sg-app", disc.SecurityGroupID)
	}
}

func TestDiscoverNoNetwork(t *testing.T) {
	t.Parallel()

	fake := newFakeEC2()
	p := vpcnet.New(fake, zaptest.NewLogger(t))

	_, err := p.Discover(context.Background(), "ecommerce-app")
	if !errors.Is(err, vpcnet.ErrNoNetwork) {
		t.Errorf("err = %v, want ErrNoNetwork", err)
	}
}
